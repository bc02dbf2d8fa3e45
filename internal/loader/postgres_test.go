package loader

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"fashionetl/internal/config"
	"fashionetl/internal/db"
	"fashionetl/internal/etlerr"
	"fashionetl/internal/repository"
	"fashionetl/internal/testutil"
)

func closedPort(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	l.Close()
	return port
}

func TestPostgresSinkConnectionFailure(t *testing.T) {
	sink := NewPostgresSink(config.Postgres{
		Host:     "127.0.0.1",
		Port:     closedPort(t),
		Database: "fashion_studio",
		User:     "postgres",
		Password: "password",
		Table:    "products",
	})

	err := sink.Write(context.Background(), testTable())
	require.Error(t, err)
	require.True(t, etlerr.IsKind(err, etlerr.KindSink))
	require.Equal(t, "postgres", sink.Name())
}

func TestPostgresSinkReplacesOnSecondWrite(t *testing.T) {
	pg := testutil.SetupPostgres(t)
	ctx := context.Background()
	sink := NewPostgresSink(pg)

	require.NoError(t, sink.Write(ctx, testTable()))
	require.NoError(t, sink.Write(ctx, testTable()))

	conn, err := db.NewPgx(ctx, pg.DSN())
	require.NoError(t, err)
	defer conn.Close(ctx)

	list, err := (&repository.ProductRepository{DB: conn}).List(ctx, pg.Table)
	require.NoError(t, err)
	require.Equal(t, testTable().Records, list)
}
