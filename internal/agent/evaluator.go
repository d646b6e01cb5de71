package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
	"github.com/emissary-ai/emissary/internal/model"
	"github.com/emissary-ai/emissary/internal/prompt"
)

const jsonFence = "```json"

// evaluateReply runs the evaluator model over a finished reply and returns
// its verdict. The evaluator is advisory: if the call fails or the verdict
// cannot be parsed, the reply is accepted and the failure logged.
func (a *Agent) evaluateReply(ctx context.Context, log *logrus.Entry, reply, message string, history []model.Message) *prompt.Verdict {
	resp, err := a.evalModel.Complete(ctx, &model.Request{
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: a.prompts.EvaluatorSystem()},
			{Role: model.RoleUser, Content: a.prompts.EvaluatorUser(history, message, reply)},
		},
		JSON: true,
	})
	if err != nil {
		log.WithError(err).Error("evaluator call failed, accepting reply")
		return &prompt.Verdict{IsAcceptable: true}
	}

	verdict, err := ParseVerdict(resp.Text)
	if err != nil {
		log.WithError(err).Error("evaluator verdict malformed, accepting reply")
		return &prompt.Verdict{IsAcceptable: true}
	}

	log.WithFields(logrus.Fields{
		"acceptable": verdict.IsAcceptable,
	}).Debug("verdict parsed")
	return verdict
}

// ParseVerdict extracts the verdict from evaluator output. The evaluator is
// instructed to fence its JSON with ```json; output without a fenced block
// is malformed, even when it happens to be parseable JSON.
func ParseVerdict(text string) (*prompt.Verdict, error) {
	i := strings.Index(text, jsonFence)
	if i < 0 {
		return nil, apperrors.Temporary(apperrors.CodeEvalMalformed, "no json fence in verdict")
	}
	rest := text[i+len(jsonFence):]
	j := strings.Index(rest, "```")
	if j < 0 {
		return nil, apperrors.Temporary(apperrors.CodeEvalMalformed, "unterminated json fence in verdict")
	}
	raw := strings.TrimSpace(rest[:j])

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEvalMalformed,
			"parsing evaluator verdict", apperrors.CategoryTemporary)
	}
	if _, ok := probe["is_acceptable"]; !ok {
		return nil, apperrors.Temporary(apperrors.CodeEvalMalformed, "verdict missing is_acceptable")
	}

	var verdict prompt.Verdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEvalMalformed,
			"decoding evaluator verdict", apperrors.CategoryTemporary)
	}
	return &verdict, nil
}
