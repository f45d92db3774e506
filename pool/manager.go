package pool

import (
	"context"

	"github.com/syssam/sqlweave/connector"
	"github.com/syssam/sqlweave/dialect"
)

// manager creates, checks and disposes of the pooled connections.
type manager interface {
	dialect() string
	connect(ctx context.Context) (*connector.Connection, error)
	check(ctx context.Context, c *connector.Connection) error
	close() error
}

type connectorManager struct {
	c    dialect.Connector
	opts []connector.Option
}

func (m *connectorManager) dialect() string { return m.c.Dialect() }

func (m *connectorManager) connect(ctx context.Context) (*connector.Connection, error) {
	return connector.Connect(ctx, m.c, m.opts...)
}

func (m *connectorManager) check(ctx context.Context, c *connector.Connection) error {
	_, err := c.QueryRaw(ctx, dialect.HealthQuery, nil)
	return err
}

func (m *connectorManager) close() error { return m.c.Close() }
