package notifier

import (
	"context"
	"encoding/json"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
)

var _ core.StatusNotifier = Nop{}

// Nop discards every status. It is used when no broker is configured.
type Nop struct{}

func (Nop) NotifyStatus(context.Context, string, json.RawMessage) error { return nil }
