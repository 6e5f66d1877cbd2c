package testutils

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nfrund/goonies/internal/pubsub"
)

// FakeImages is a storage.Images that records uploads and returns hosted
// asset URLs.
type FakeImages struct {
	mu      sync.Mutex
	Folders []string
	Bodies  []string
	// Err, when set, is returned by Upload.
	Err error
}

func (f *FakeImages) Upload(_ context.Context, r io.Reader, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.Folders = append(f.Folders, folder)
	f.Bodies = append(f.Bodies, string(body))
	return fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/%s/img%d.jpg", folder, len(f.Folders)), nil
}

// RecordingPublisher is a pubsub.Publisher that keeps published messages.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *RecordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Messages returns a copy of the published messages.
func (p *RecordingPublisher) Messages() []pubsub.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pubsub.Message(nil), p.messages...)
}
