// Package relay dispatches client commands to the upstream link and pumps
// upstream events back to the client, keeping at most one listener loop and
// one live upstream link per client at all times.
package relay

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/antoniostano/switchboard/internal/observability"
	"github.com/antoniostano/switchboard/internal/protocol"
	"github.com/antoniostano/switchboard/internal/session"
	"github.com/antoniostano/switchboard/internal/upstream"
)

// listenerHandle tracks one running upstream listener loop so a replacement
// can cancel it before taking over.
type listenerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Relay struct {
	sessions *session.Manager
	upstream *upstream.Controller
	metrics  *observability.Metrics

	mu        sync.Mutex
	listeners map[string]*listenerHandle
}

func New(sessions *session.Manager, upstreamCtl *upstream.Controller, metrics *observability.Metrics) *Relay {
	return &Relay{
		sessions:  sessions,
		upstream:  upstreamCtl,
		metrics:   metrics,
		listeners: make(map[string]*listenerHandle),
	}
}

// Register creates session state for a freshly accepted client connection.
// A second connection reusing a live client id replaces the session without
// inflating the active-client gauge.
func (r *Relay) Register(clientID string) {
	sessionID, replaced := r.sessions.Create(clientID)
	if !replaced {
		r.metrics.ActiveClients.Inc()
	}
	log.Printf("[relay] client %s registered, session %s", clientID, sessionID)
}

// HandleMessage dispatches one parsed client command. Replies destined for
// the client go on outbound, which is drained by the connection's single
// writer goroutine.
func (r *Relay) HandleMessage(ctx context.Context, clientID string, msg any, outbound chan<- any) {
	if t, ok := protocol.TypeOf(msg); ok {
		r.metrics.ClientEvents.WithLabelValues(string(t)).Inc()
	}

	switch m := msg.(type) {
	case protocol.ConnectAgent:
		r.connectAgent(ctx, clientID, m.AgentID, false, outbound)

	case protocol.SwitchAgent:
		if strings.TrimSpace(m.AgentID) == "" {
			log.Printf("[relay] client %s sent switch_agent without agent_id, ignoring", clientID)
			return
		}
		r.connectAgent(ctx, clientID, m.AgentID, true, outbound)

	case protocol.Audio:
		if m.Audio == "" {
			log.Printf("[relay] client %s sent empty audio chunk, dropping", clientID)
			return
		}
		first, err := r.sessions.ArmAudio(clientID)
		if err != nil {
			log.Printf("[relay] audio from unknown client %s: %v", clientID, err)
			return
		}
		if first {
			log.Printf("[relay] client %s streaming audio", clientID)
		}
		r.upstream.Send(clientID, upstream.NewAudioAppend(m.Audio))

	case protocol.CommitAudio:
		if !r.sessions.AudioArmed(clientID) {
			log.Printf("[relay] client %s committed with empty audio buffer, skipping", clientID)
			return
		}
		r.upstream.Send(clientID, upstream.NewAudioCommit())
		r.upstream.Send(clientID, upstream.NewResponseCreate())
		if err := r.sessions.DisarmAudio(clientID); err != nil {
			log.Printf("[relay] disarm audio for client %s: %v", clientID, err)
		}

	case protocol.Cancel:
		r.upstream.Send(clientID, upstream.NewResponseCancel())

	case protocol.Text:
		if strings.TrimSpace(m.Text) == "" {
			log.Printf("[relay] client %s sent empty text, dropping", clientID)
			return
		}
		r.upstream.Send(clientID, upstream.NewUserTextItem(m.Text))
		r.upstream.Send(clientID, upstream.NewResponseCreate())

	default:
		log.Printf("[relay] client %s sent unhandled message %T, ignoring", clientID, msg)
	}
}

// connectAgent replaces the client's upstream link and listener loop with a
// fresh pair configured for agentID. The previous listener is cancelled
// before anything else so at most one loop reads per client.
func (r *Relay) connectAgent(ctx context.Context, clientID, agentID string, isSwitch bool, outbound chan<- any) {
	previous, _ := r.sessions.ActiveAgent(clientID)
	hadListener := r.cancelListener(clientID)

	link, desc, err := r.upstream.Connect(ctx, clientID, agentID)
	if err != nil {
		log.Printf("[relay] connect client %s to agent %s: %v", clientID, agentID, err)
		deliver(ctx, outbound, protocol.ErrorText("Failed to connect to OpenAI"))
		return
	}

	if err := r.sessions.SetActiveAgent(clientID, desc.ID); err != nil {
		log.Printf("[relay] set active agent for client %s: %v", clientID, err)
	}
	if hadListener && previous != desc.ID {
		if err := r.sessions.RecordSwitch(clientID, previous, desc.ID, ""); err != nil {
			log.Printf("[relay] record switch for client %s: %v", clientID, err)
		}
	}
	if isSwitch {
		r.metrics.AgentSwitches.Inc()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	handle := &listenerHandle{cancel: cancel, done: make(chan struct{})}
	r.mu.Lock()
	r.listeners[clientID] = handle
	r.mu.Unlock()
	go r.runListener(loopCtx, clientID, link, outbound, handle.done)

	if isSwitch {
		deliver(ctx, outbound, protocol.AgentSwitched{Type: protocol.TypeAgentSwitched, AgentID: desc.ID, AgentName: desc.Name})
	} else {
		deliver(ctx, outbound, protocol.Connected{Type: protocol.TypeConnected, AgentID: desc.ID, AgentName: desc.Name})
	}
}

// cancelListener stops the client's listener loop, if any, and waits for it
// to exit. The upstream link must be closed to unblock a listener parked in
// a read; cancelling the context first guarantees the loop forwards nothing
// once it wakes. Reports whether a loop was running.
func (r *Relay) cancelListener(clientID string) bool {
	r.mu.Lock()
	handle := r.listeners[clientID]
	delete(r.listeners, clientID)
	r.mu.Unlock()

	if handle == nil {
		return false
	}
	handle.cancel()
	r.upstream.Close(clientID)
	<-handle.done
	return true
}

// runListener pumps events off one upstream link until the link breaks or
// the loop context is cancelled. A cancelled loop forwards nothing.
func (r *Relay) runListener(ctx context.Context, clientID string, link upstream.Link, outbound chan<- any, done chan struct{}) {
	defer close(done)

	var transcript strings.Builder
	for {
		ev, err := link.ReadEvent()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[relay] upstream read for client %s: %v", clientID, err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		r.metrics.UpstreamEvents.WithLabelValues(ev.Type).Inc()

		switch ev.Type {
		case upstream.EventError:
			log.Printf("[relay] upstream error for client %s: %s", clientID, ev.Error)
			deliver(ctx, outbound, protocol.ErrorMessage{Type: protocol.TypeError, Error: ev.Error})

		case upstream.EventAudioDelta:
			deliver(ctx, outbound, protocol.AudioDelta{Type: protocol.TypeAudioDelta, Delta: ev.Delta})

		case upstream.EventTranscriptDelta:
			transcript.WriteString(ev.Delta)
			deliver(ctx, outbound, protocol.TranscriptDelta{Type: protocol.TypeTranscriptDelta, Delta: ev.Delta})

		case upstream.EventInputTranscriptionCompleted:
			if ev.Transcript != "" {
				if err := r.sessions.RecordMessage(clientID, session.RoleUser, ev.Transcript, ""); err != nil {
					log.Printf("[relay] record user message for client %s: %v", clientID, err)
				}
			}
			deliver(ctx, outbound, protocol.UserTranscript{Type: protocol.TypeUserTranscript, Transcript: ev.Transcript})

		case upstream.EventResponseDone:
			if transcript.Len() > 0 {
				if err := r.sessions.RecordMessage(clientID, session.RoleAssistant, transcript.String(), ""); err != nil {
					log.Printf("[relay] record assistant message for client %s: %v", clientID, err)
				}
				transcript.Reset()
			}
			log.Printf("[relay] response completed for client %s", clientID)
			deliver(ctx, outbound, protocol.OpenAIEvent{Type: protocol.TypeOpenAIEvent, Event: ev.Raw})

		case upstream.EventSessionCreated, upstream.EventSessionUpdated:
			log.Printf("[relay] upstream session ready for client %s (%s)", clientID, ev.Type)
			deliver(ctx, outbound, protocol.OpenAIEvent{Type: protocol.TypeOpenAIEvent, Event: ev.Raw})

		case upstream.EventInputTranscriptionFailed:
			log.Printf("[relay] input transcription failed for client %s", clientID)
			deliver(ctx, outbound, protocol.OpenAIEvent{Type: protocol.TypeOpenAIEvent, Event: ev.Raw})

		default:
			deliver(ctx, outbound, protocol.OpenAIEvent{Type: protocol.TypeOpenAIEvent, Event: ev.Raw})
		}
	}
}

// Disconnect tears down everything held for clientID. Safe to call more
// than once and for clients that never connected upstream.
func (r *Relay) Disconnect(clientID string) {
	r.cancelListener(clientID)
	r.upstream.Close(clientID)
	if _, err := r.sessions.ActiveAgent(clientID); err == nil {
		r.sessions.Destroy(clientID)
		r.metrics.ActiveClients.Dec()
		log.Printf("[relay] client %s disconnected", clientID)
	}
}

// deliver pushes one message toward the client writer without blocking past
// connection shutdown.
func deliver(ctx context.Context, outbound chan<- any, msg any) {
	select {
	case outbound <- msg:
	case <-ctx.Done():
	}
}
