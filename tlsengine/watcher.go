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

package tlsengine

import (
	"os"

	"github.com/fsnotify/fsnotify"
)

// IdentityWatcher watches an identity file (a PKCS#12 blob on disk)
// for writes/renames and reloads it, handing the new Identity to
// OnReload. The connection runtime swaps its TLS config's certificate
// on the next handshake rather than mid-session.
type IdentityWatcher struct {
	path     string
	password string
	watcher  *fsnotify.Watcher
	OnReload func(*Identity, error)
	done     chan struct{}
}

// WatchIdentity starts watching path for changes, invoking onReload
// with the freshly-parsed Identity (or an error) each time the file is
// rewritten.
func WatchIdentity(path, password string, onReload func(*Identity, error)) (*IdentityWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, err
	}

	iw := &IdentityWatcher{
		path:     path,
		password: password,
		watcher:  w,
		OnReload: onReload,
		done:     make(chan struct{}),
	}
	go iw.loop()
	return iw, nil
}

func (iw *IdentityWatcher) loop() {
	for {
		select {
		case ev, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			blob, err := os.ReadFile(iw.path)
			if err != nil {
				iw.OnReload(nil, err)
				continue
			}
			id, err := LoadIdentity(blob, iw.password)
			iw.OnReload(id, err)
		case <-iw.done:
			return
		case _, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (iw *IdentityWatcher) Close() error {
	close(iw.done)
	return iw.watcher.Close()
}
