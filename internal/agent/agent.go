// Package agent provides the Emissary conversation orchestrator.
//
// A turn runs the chat model in a loop, dispatching tool calls back into
// the registry until the model produces a plain reply, then optionally
// runs the reply past the evaluator with one regeneration attempt.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
	"github.com/emissary-ai/emissary/internal/model"
	"github.com/emissary-ai/emissary/internal/prompt"
	"github.com/emissary-ai/emissary/internal/tools"
)

// DefaultMaxToolRounds bounds the tool-call loop in a single turn.
const DefaultMaxToolRounds = 8

// Agent orchestrates a persona chat turn.
type Agent struct {
	model         model.Model
	evalModel     model.Model
	tools         *tools.Registry
	dispatcher    *tools.Dispatcher
	prompts       *prompt.Builder
	log           *logrus.Logger
	maxToolRounds int
	evaluate      bool
	temperature   float64
}

// Config configures the agent.
type Config struct {
	Model     model.Model
	EvalModel model.Model // falls back to Model when nil
	Tools     *tools.Registry
	Prompts   *prompt.Builder
	Log       *logrus.Logger

	MaxToolRounds int
	Evaluate      bool
	Temperature   float64
}

// New creates an agent from the given configuration.
func New(cfg *Config) *Agent {
	evalModel := cfg.EvalModel
	if evalModel == nil {
		evalModel = cfg.Model
	}
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}
	return &Agent{
		model:         cfg.Model,
		evalModel:     evalModel,
		tools:         cfg.Tools,
		dispatcher:    tools.NewDispatcher(cfg.Tools, log),
		prompts:       cfg.Prompts,
		log:           log,
		maxToolRounds: maxRounds,
		evaluate:      cfg.Evaluate,
		temperature:   cfg.Temperature,
	}
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Text        string `json:"text"`
	TurnID      string `json:"turn_id"`
	ToolRounds  int    `json:"tool_rounds"`
	TokensUsed  int    `json:"tokens_used"`
	Regenerated bool   `json:"regenerated"`
	DurationMs  int64  `json:"duration_ms"`

	// Transcript is the full conversation of the turn, including tool
	// traffic and the final assistant reply. When Regenerated is set the
	// final assistant message holds the regenerated text; the rejected
	// attempt is not kept.
	Transcript []model.Message `json:"transcript,omitempty"`
}

// Chat runs one conversation turn: the user message is answered in the
// context of the prior history. The history holds only user and assistant
// messages; tool traffic from earlier turns is not replayed.
func (a *Agent) Chat(ctx context.Context, message string, history []model.Message) (*Reply, error) {
	start := time.Now()
	turnID := uuid.NewString()
	log := a.log.WithFields(logrus.Fields{
		"turn_id": turnID,
	})

	messages := make([]model.Message, 0, len(history)+2)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: a.prompts.System()})
	messages = append(messages, history...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: message})

	resp, messages, rounds, err := a.runToolLoop(ctx, log, messages)
	if err != nil {
		return nil, err
	}

	if resp.Text == "" {
		return nil, apperrors.Temporary(apperrors.CodeModelInvalidResponse, "model returned empty reply")
	}
	messages = append(messages, model.Message{Role: model.RoleAssistant, Content: resp.Text})

	reply := &Reply{
		Text:       resp.Text,
		TurnID:     turnID,
		ToolRounds: rounds,
		TokensUsed: resp.TokensUsed,
		Transcript: messages,
	}

	if a.evaluate {
		verdict := a.evaluateReply(ctx, log, reply.Text, message, history)
		if !verdict.IsAcceptable {
			log.WithField("feedback", verdict.Feedback).Info("reply rejected, regenerating")
			if text, err := a.regenerate(ctx, reply.Text, verdict.Feedback, message, history); err != nil {
				log.WithError(err).Error("regeneration failed, keeping original reply")
			} else {
				reply.Text = text
				reply.Regenerated = true
				reply.Transcript[len(reply.Transcript)-1].Content = text
			}
		}
	}

	reply.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"tool_rounds": reply.ToolRounds,
		"tokens":      reply.TokensUsed,
		"regenerated": reply.Regenerated,
		"duration_ms": reply.DurationMs,
	}).Info("turn complete")
	return reply, nil
}

// runToolLoop calls the model until it stops requesting tools, dispatching
// each batch of calls and feeding the results back. The loop is bounded by
// maxToolRounds. Returns the final response along with the conversation as
// it stood going into the final call.
func (a *Agent) runToolLoop(ctx context.Context, log *logrus.Entry, messages []model.Message) (*model.Response, []model.Message, int, error) {
	rounds := 0
	for {
		resp, err := a.model.Complete(ctx, &model.Request{
			Messages:    messages,
			Tools:       a.tools.ModelTools(),
			Temperature: a.temperature,
		})
		if err != nil {
			return nil, nil, rounds, err
		}

		if !resp.WantsTools() {
			return resp, messages, rounds, nil
		}

		rounds++
		if rounds > a.maxToolRounds {
			return nil, nil, rounds, apperrors.Temporary(apperrors.CodeToolLoopExceeded, "tool call loop exceeded bound")
		}

		log.WithFields(logrus.Fields{
			"round": rounds,
			"calls": len(resp.ToolCalls),
		}).Debug("dispatching tool calls")

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, a.dispatcher.Dispatch(ctx, resp.ToolCalls)...)
	}
}

// regenerate asks the model for a second attempt at the reply, with the
// rejected attempt and the evaluator's feedback folded into the system
// prompt. Tools are withheld: the retry must produce text.
func (a *Agent) regenerate(ctx context.Context, rejected, feedback, message string, history []model.Message) (string, error) {
	messages := make([]model.Message, 0, len(history)+2)
	messages = append(messages, model.Message{
		Role:    model.RoleSystem,
		Content: a.prompts.RegenerationSystem(rejected, feedback),
	})
	messages = append(messages, history...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: message})

	resp, err := a.model.Complete(ctx, &model.Request{
		Messages:    messages,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", apperrors.Temporary(apperrors.CodeModelInvalidResponse, "regeneration returned empty reply")
	}
	return resp.Text, nil
}
