/*
 * MIT License
 *
 * Copyright (c) 2025 NexusKit Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package netmonitor

import (
	"context"

	"github.com/nexuskit/nexuskit/connection"
	nxerr "github.com/nexuskit/nexuskit/errors"
	"github.com/nexuskit/nexuskit/state"
)

// WireConnection subscribes to w and drives c off host reachability: a
// disconnected event disconnects c if it is connecting, connected or
// reconnecting, and a connected event calls Connect on c if it is
// disconnected or reconnecting. A reconnect c had already scheduled
// before the disconnected event is not cancelled: it still runs when
// its delay expires, and if it fails c schedules the next one as usual.
// It runs until ctx is done.
func WireConnection(ctx context.Context, w *Watcher, c *connection.Connection) {
	ch := w.Subscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				handleEvent(ctx, ev, c)
			}
		}
	}()
}

func handleEvent(ctx context.Context, ev Event, c *connection.Connection) {
	switch ev.Type {
	case EventDisconnected:
		if c.State().IsActive() {
			_ = c.Disconnect(nxerr.New(nxerr.CodeConnectionUnreachable, "host network interface went offline"))
		}
	case EventConnected:
		if c.State() == state.Disconnected || c.State() == state.Reconnecting {
			_ = c.Connect(ctx)
		}
	}
}
