package chat

import (
	"fmt"
)

type Handler interface {
	Type() FrameType
	Handle(ctx *Context, f *Frame, c *Client) error
}

// Context hands the server to handlers without package-level state.
type Context struct {
	S *Server
}

type Dispatcher struct {
	handlers map[FrameType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[FrameType]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) GetHandler(t FrameType) Handler {
	return d.handlers[t]
}

func (d *Dispatcher) Dispatch(ctx *Context, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return fmt.Errorf("no handler for type=%s", f.Type)
	}
	return h.Handle(ctx, f, c)
}
