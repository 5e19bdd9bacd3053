// Package orchestrator sequences one conversation turn through a small
// state machine: classify whether retrieval is needed, execute pending
// document searches, then synthesize the answer.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// State is a phase of the per-turn state machine.
type State int

const (
	StateDecide State = iota
	StateTools
	StateRespond
	StateDone
)

// DecisionStage classifies whether the turn needs retrieval and, if so,
// queues tool requests on the state.
type DecisionStage interface {
	Decide(ctx context.Context, state *domain.ConversationState) error
}

// ToolStage executes the pending tool requests and clears them.
type ToolStage interface {
	Run(ctx context.Context, state *domain.ConversationState)
}

// ResponseStage produces the final assistant message.
type ResponseStage interface {
	Respond(ctx context.Context, state *domain.ConversationState) (domain.Message, error)
}

// Orchestrator wires the three stages. Stages are injected so variants
// (different models, scorers, retrievers) share this one control flow.
type Orchestrator struct {
	decision DecisionStage
	tools    ToolStage
	response ResponseStage
	logger   *zap.Logger
}

func New(decision DecisionStage, tools ToolStage, response ResponseStage, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{decision: decision, tools: tools, response: response, logger: logger}
}

// RunTurn drives one turn to completion and appends the assistant's answer
// to the state. The loop terminates because the decision stage classifies
// at most once per turn: after TOOLS runs, the second DECIDE visit finds
// the decision already made and an empty request list, and falls through
// to RESPOND. Decision and tool failures are absorbed; only a response
// failure propagates.
func (o *Orchestrator) RunTurn(ctx context.Context, state *domain.ConversationState) error {
	state.BeginTurn()

	for st := StateDecide; st != StateDone; {
		switch st {
		case StateDecide:
			if err := o.decision.Decide(ctx, state); err != nil {
				// No classification means no retrieval, not a failed turn.
				o.logger.Warn("decision stage failed, answering without retrieval", zap.Error(err))
			}
			if len(state.PendingTools) > 0 {
				st = StateTools
			} else {
				st = StateRespond
			}
		case StateTools:
			o.tools.Run(ctx, state)
			st = StateDecide
		case StateRespond:
			msg, err := o.response.Respond(ctx, state)
			if err != nil {
				return err
			}
			state.Append(msg)
			st = StateDone
		}
	}
	return nil
}
