package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// rodElement runs every action under its own deadline so a stale node can
// never hang a lookup.
type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *rodElement) bind(ctx context.Context) (*rod.Element, context.CancelFunc) {
	actionCtx, cancel := context.WithTimeout(ctx, e.timeout)
	return e.el.Context(actionCtx), cancel
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	el, cancel := e.bind(ctx)
	defer cancel()

	text, err := el.Text()
	if err != nil {
		return "", categorizeError(err, "read element text failed")
	}
	return text, nil
}

func (e *rodElement) Input(ctx context.Context, text string) error {
	el, cancel := e.bind(ctx)
	defer cancel()

	if err := el.Input(text); err != nil {
		return categorizeError(err, "input failed")
	}
	return nil
}

func (e *rodElement) Press(ctx context.Context, keys ...Key) error {
	el, cancel := e.bind(ctx)
	defer cancel()

	rk := make([]input.Key, len(keys))
	for i, k := range keys {
		mapped, err := toRodKey(k)
		if err != nil {
			return err
		}
		rk[i] = mapped
	}
	if err := el.Type(rk...); err != nil {
		return categorizeError(err, "keystrokes failed")
	}
	return nil
}

func (e *rodElement) Click(ctx context.Context) error {
	el, cancel := e.bind(ctx)
	defer cancel()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return categorizeError(err, "click failed")
	}
	return nil
}

func toRodKey(k Key) (input.Key, error) {
	switch k {
	case KeyEnter:
		return input.Enter, nil
	case KeyArrowRight:
		return input.ArrowRight, nil
	case KeyBackspace:
		return input.Backspace, nil
	default:
		return 0, fmt.Errorf("unknown key: %d", k)
	}
}
