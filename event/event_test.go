// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package event

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribePublish(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	defer bus.Stop()
	_, ch := bus.Subscribe("test.event")
	bus.Publish("test.event", NewEvent("test.event", "payload"))
	select {
	case evt := <-ch:
		assert.Equal(t, EventType("test.event"), evt.Type)
		assert.Equal(t, "payload", evt.Data)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSubscribeFunc(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	bus.SubscribeFunc("test.event", func(evt Event) {
		got = evt
		wg.Done()
	})
	bus.Publish("test.event", NewEvent("test.event", 42))
	wg.Wait()
	bus.Stop()
	assert.Equal(t, 42, got.Data)
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	defer bus.Stop()
	// Must not panic or block
	bus.Publish("test.event", NewEvent("test.event", nil))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	defer bus.Stop()
	subId, ch := bus.Subscribe("test.event")
	bus.Unsubscribe("test.event", subId)
	_, open := <-ch
	require.False(t, open)
}

func TestStopClosesSubscribers(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry())
	_, ch := bus.Subscribe("test.event")
	bus.Stop()
	_, open := <-ch
	require.False(t, open)
}
