package chat

import (
	"LoginChat/logger"
	"LoginChat/tools/decode"
	"LoginChat/tools/errs"
	"LoginChat/tools/security"
)

// Gate binds a connection to an identity on its first join frame.
// Invalid joins are dropped and logged, never escalated to the transport.
type Gate struct {
	reg            Registry
	tracker        *Tracker
	jwt            security.Options
	allowAnonymous bool
}

func NewGate(reg Registry, tracker *Tracker, jwt security.Options, allowAnonymous bool) *Gate {
	return &Gate{reg: reg, tracker: tracker, jwt: jwt, allowAnonymous: allowAnonymous}
}

func (g *Gate) Type() FrameType { return FrameJoin }

func (g *Gate) Handle(_ *Context, f *Frame, c *Client) error {
	p, err := decode.Decode[JoinPayload](f.Payload)
	if err != nil {
		logger.Warnf("[gate] bad join payload conn=%s: %v", c.ConnID, err)
		c.TrySend(BuildError(f.TraceID, errs.ErrArgs.WithDetail("bad join payload")))
		return nil
	}
	return g.HandleJoin(c, p, f.TraceID)
}

// HandleJoin validates the claimed identity, registers the connection
// and announces presence. Unless anonymous join is enabled, the join
// token's subject must match the claimed user id, so a client cannot
// bind someone else's identity.
func (g *Gate) HandleJoin(c *Client, p *JoinPayload, traceID string) error {
	if p.UserID == "" {
		logger.Warnf("[gate] join without user_id conn=%s", c.ConnID)
		c.TrySend(BuildError(traceID, errs.ErrArgs.WithDetail("user_id required")))
		return nil
	}
	// The identity binds once per connection. A repeat join for the same
	// user is a harmless refresh; a different user on a bound connection
	// would orphan the registry entry of the first, so it is dropped.
	if c.Bound() && c.UserID != p.UserID {
		logger.Warnf("[gate] rebind rejected conn=%s bound=%s claimed=%s", c.ConnID, c.UserID, p.UserID)
		c.TrySend(BuildError(traceID, errs.ErrIdentityMismatch))
		return nil
	}

	displayName := p.DisplayName
	if !g.allowAnonymous {
		claims, err := security.Verify(g.jwt, p.Token)
		if err != nil {
			logger.Warnf("[gate] join token rejected conn=%s user=%s: %v", c.ConnID, p.UserID, err)
			c.TrySend(BuildError(traceID, errs.ErrTokenInvalid))
			return nil
		}
		if claims.UserID() != p.UserID {
			logger.Warnf("[gate] join identity mismatch conn=%s claimed=%s token=%s", c.ConnID, p.UserID, claims.UserID())
			c.TrySend(BuildError(traceID, errs.ErrIdentityMismatch))
			return nil
		}
		if displayName == "" {
			displayName = claims.DisplayName()
		}
	}

	c.UserID = p.UserID
	c.DisplayName = displayName

	// Last connection wins. The replaced connection stays open but is no
	// longer reachable for directed sends.
	replaced := g.reg.Register(p.UserID, c.ConnID, displayName)
	logger.Infof("[gate] joined user=%s conn=%s reconnect=%v", p.UserID, c.ConnID, replaced)

	if ack, err := BuildJoinAck(traceID, p.UserID, c.ConnID); err == nil {
		c.TrySend(ack)
	}
	g.tracker.UserOnline(p.UserID, replaced)
	return nil
}
