/*
Copyright 2011-2024 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package entropy

import (
	"testing"

	kanzi "github.com/kanzilite/kanzi"
	"github.com/kanzilite/kanzi/bitstream"
	"github.com/kanzilite/kanzi/internal"
)

type recordingListener struct {
	types []int
}

func (this *recordingListener) ProcessEvent(evt *kanzi.Event) {
	this.types = append(this.types, evt.Type())
}

// A listener that panics must not stop a factory-built coder from being
// created: NotifyListeners recovers around each ProcessEvent call.
type panickingListener struct{}

func (panickingListener) ProcessEvent(evt *kanzi.Event) {
	panic("listener exploded")
}

func TestEntropyFactoryNotifiesListeners(t *testing.T) {
	bs := internal.NewBufferStream()
	obs, err := bitstream.NewDefaultOutputBitStream(bs, 16384)

	if err != nil {
		t.Fatalf("Failed to create OutputBitStream: %v", err)
	}

	rec := &recordingListener{}
	ctx := map[string]any{"size": int64(1024), "listeners": []kanzi.Listener{rec, panickingListener{}}}

	enc, err := NewEntropyEncoder(obs, ctx, FPAQ_TYPE)

	if err != nil {
		t.Fatalf("NewEntropyEncoder failed: %v", err)
	}

	enc.Dispose()

	if len(rec.types) != 2 {
		t.Fatalf("Expected 2 events (before/after entropy), got %d: %v", len(rec.types), rec.types)
	}

	if rec.types[0] != kanzi.EVT_BEFORE_ENTROPY {
		t.Fatalf("Expected first event to be EVT_BEFORE_ENTROPY, got %d", rec.types[0])
	}

	if rec.types[1] != kanzi.EVT_AFTER_ENTROPY {
		t.Fatalf("Expected second event to be EVT_AFTER_ENTROPY, got %d", rec.types[1])
	}
}

func TestEntropyFactoryNoListenersNoNotification(t *testing.T) {
	bs := internal.NewBufferStream()
	obs, err := bitstream.NewDefaultOutputBitStream(bs, 16384)

	if err != nil {
		t.Fatalf("Failed to create OutputBitStream: %v", err)
	}

	// No "listeners" key in the context: the factory must still build the
	// coder, it just has nobody to notify.
	enc, err := NewEntropyEncoder(obs, map[string]any{}, FPAQ_TYPE)

	if err != nil {
		t.Fatalf("NewEntropyEncoder failed: %v", err)
	}

	enc.Dispose()
}

func TestEntropyFactoryUnsupportedTypeSkipsAfterEvent(t *testing.T) {
	bs := internal.NewBufferStream()
	obs, err := bitstream.NewDefaultOutputBitStream(bs, 16384)

	if err != nil {
		t.Fatalf("Failed to create OutputBitStream: %v", err)
	}

	rec := &recordingListener{}
	ctx := map[string]any{"listeners": []kanzi.Listener{rec}}

	if _, err := NewEntropyEncoder(obs, ctx, RESERVED1); err == nil {
		t.Fatalf("Expected an error for an unsupported entropy codec type")
	}

	if len(rec.types) != 1 || rec.types[0] != kanzi.EVT_BEFORE_ENTROPY {
		t.Fatalf("Expected only EVT_BEFORE_ENTROPY on construction failure, got %v", rec.types)
	}
}
