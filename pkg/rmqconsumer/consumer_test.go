package rmqconsumer

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filevault-api/config"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	defer func() { os.Stdout = old }()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	_ = r.Close()
	return buf.String()
}

func Test_delivery_Table(t *testing.T) {
	type tc struct {
		name       string
		routingKey string
		body       string
		wantOut    string
	}
	cases := []tc{
		{"upload event", "FileUploaded", `{"id":1}`, "Action=FileUploaded EventBody={\"id\":1}\n"},
		{"delete event", "FileDeleted", `{"id":2}`, "Action=FileDeleted EventBody={\"id\":2}\n"},
		{"unknown -> empty", "FileRenamed", `{"id":3}`, "Action= EventBody={\"id\":3}\n"},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := &Consumer{}
			out := captureStdout(t, func() {
				msg := amqp091.Delivery{RoutingKey: tt.routingKey, Body: []byte(tt.body)}
				err := c.delivery(msg)
				require.NoError(t, err)
			})
			require.Equal(t, tt.wantOut, out)
		})
	}
}

func TestConnect_InvalidDSN(t *testing.T) {
	l := zap.NewNop()
	c := New(config.MQ{}, l, nil)

	err := c.Connect("amqp://bad:://dsn")
	require.Error(t, err)
	require.Nil(t, c.chConsume)
	require.Nil(t, c.conn)
}
