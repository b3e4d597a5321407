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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventQueueSize is the buffer size of each subscriber channel.
const EventQueueSize = 20

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// EventBus delivers events to in-process subscribers. Callers that
// prefer polling simply skip subscribing; nothing in the bus assumes
// a particular notification transport.
type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]chan Event
	metrics     struct {
		eventsTotal *prometheus.CounterVec
		subscribers *prometheus.GaugeVec
	}
	lastSubId EventSubscriberId
	mu        sync.Mutex
}

func NewEventBus(promRegistry prometheus.Registerer) *EventBus {
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]chan Event),
	}
	promautoFactory := promauto.With(promRegistry)
	e.metrics.eventsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credmint_events_total",
			Help: "total events published by type",
		},
		[]string{"type"},
	)
	e.metrics.subscribers = promautoFactory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "credmint_event_subscribers",
			Help: "current subscriber count by type",
		},
		[]string{"type"},
	)
	return e
}

// Subscribe allows a consumer to receive events of a particular type
// via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subId := e.lastSubId + 1
	e.lastSubId = subId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]chan Event)
	}
	ch := make(chan Event, EventQueueSize)
	e.subscribers[eventType][subId] = ch
	e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	return subId, ch
}

// SubscribeFunc allows a consumer to receive events of a particular
// type via a callback function
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an
// existing subscriber
func (e *EventBus) Unsubscribe(
	eventType EventType,
	subId EventSubscriberId,
) {
	e.mu.Lock()
	defer e.mu.Unlock()
	evtTypeSubs, ok := e.subscribers[eventType]
	if !ok {
		return
	}
	ch, ok := evtTypeSubs[subId]
	if !ok {
		return
	}
	delete(evtTypeSubs, subId)
	if len(evtTypeSubs) == 0 {
		delete(e.subscribers, eventType)
	}
	close(ch)
	e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
}

// Publish allows a producer to send an event of a particular type to
// all subscribers
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.Lock()
	subs := make([]chan Event, 0, len(e.subscribers[eventType]))
	for _, ch := range e.subscribers[eventType] {
		subs = append(subs, ch)
	}
	e.mu.Unlock()
	for _, ch := range subs {
		ch <- evt
	}
	e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
}

// Stop closes all subscriber channels and clears the subscribers
// map, so that SubscribeFunc goroutines exit cleanly during
// shutdown. The bus can still be reused afterward.
func (e *EventBus) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, evtTypeSubs := range e.subscribers {
		for _, ch := range evtTypeSubs {
			close(ch)
		}
	}
	e.subscribers = make(map[EventType]map[EventSubscriberId]chan Event)
	e.metrics.subscribers.Reset()
}
