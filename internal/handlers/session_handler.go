package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	snapshotTimeout   = 5 * time.Second
	heartbeatInterval = 15 * time.Second
)

func toSessionResponse(s session.State) dto.SessionResponse {
	return dto.SessionResponse{User: toUserResponse(s.User), Loading: s.Loading}
}

// Session reports the first settled state for the caller's token.
func Session(c *fiber.Ctx) error {
	p := platform.From(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), snapshotTimeout)
	defer cancel()

	tr := session.NewTracker(p.Identity, session.TokenFrom(c))
	state := tr.Snapshot()
	go func() { _ = tr.Run(ctx) }()

	select {
	case s, ok := <-tr.Updates():
		if ok {
			state = s
		}
	case <-ctx.Done():
	}
	return c.JSON(toSessionResponse(state))
}

// SessionStream pushes session state over Server-Sent Events until the
// session ends or the client goes away.
func SessionStream(c *fiber.Ctx) error {
	p := platform.From(c)
	token := session.TokenFrom(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// fasthttp does not cancel anything on disconnect; a failed write is
		// how the stream learns the client left.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tr := session.NewTracker(p.Identity, token)
		initial := tr.Snapshot()
		go func() { _ = tr.Run(ctx) }()

		if err := writeEvent(w, initial); err != nil {
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case s, ok := <-tr.Updates():
				if !ok {
					return
				}
				if err := writeEvent(w, s); err != nil {
					slog.Debug("session stream closed", "error", err)
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, s session.State) error {
	data, err := json.Marshal(toSessionResponse(s))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
