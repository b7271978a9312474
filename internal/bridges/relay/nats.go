package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/natsbus"
)

// SourceNATS is the default invocation source for NATS commands.
const SourceNATS = "nats"

// Server answers requests on a subject. Satisfied by *natsbus.Client.
type Server interface {
	Serve(subject string, handler natsbus.RequestHandler) (stop func() error, err error)
}

// NATSBridge answers command requests over NATS. The reply is the
// ResultMessage as JSON.
type NATSBridge struct {
	server   Server
	ctx      context.Context
	dispatch dispatcher
	logger   Logger
	stop     func() error
}

// NewNATSBridge creates the bridge. Call Start to begin serving.
func NewNATSBridge(deviceID string, server Server, executor Executor, logger Logger) *NATSBridge {
	if logger == nil {
		logger = noopLogger{}
	}
	return &NATSBridge{
		server: server,
		ctx:    context.Background(),
		dispatch: dispatcher{
			deviceID: deviceID,
			source:   SourceNATS,
			executor: executor,
			logger:   logger,
			now:      time.Now,
		},
		logger: logger,
	}
}

// Start serves relay.{device_id}.command. Requests run under ctx.
func (b *NATSBridge) Start(ctx context.Context) error {
	b.ctx = ctx
	subject := natsbus.CommandSubject(b.dispatch.deviceID)
	stop, err := b.server.Serve(subject, b.HandleRequest)
	if err != nil {
		return fmt.Errorf("serve commands: %w", err)
	}
	b.stop = stop
	b.logger.Info("nats command bridge started", "subject", subject)
	return nil
}

// Stop stops serving.
func (b *NATSBridge) Stop() {
	if b.stop == nil {
		return
	}
	if err := b.stop(); err != nil {
		b.logger.Warn("nats unsubscribe failed", "error", err)
	}
	b.stop = nil
}

// HandleRequest runs one request and returns the encoded result.
func (b *NATSBridge) HandleRequest(_ string, data []byte) []byte {
	var res ResultMessage

	msg, err := decodeCommand(data)
	if err != nil {
		res = rejected(b.dispatch.deviceID, "", ErrCodeInvalidPayload, err.Error(), b.dispatch.now())
	} else {
		b.dispatch.run(b.ctx, msg, func(r ResultMessage) { res = r })
	}

	reply, err := json.Marshal(res)
	if err != nil {
		b.logger.Error("failed to encode result", "error", err)
		return nil
	}
	return reply
}
