package validation

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/llm"
)

// Dispatcher is the slice of the model gateway the repairer needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, messages []llm.Message) (string, error)
}

// Repairer issues the single bounded repair request when a completion fails
// validation. It never retries beyond that: after one failed repair the
// caller's deterministic fallback wins.
type Repairer struct {
	gw  Dispatcher
	log *zap.Logger
}

// NewRepairer builds a repairer on top of the gateway.
func NewRepairer(gw Dispatcher, log *zap.Logger) *Repairer {
	return &Repairer{gw: gw, log: log}
}

// RepairJSON asks the model to reproduce the same keys while rewriting the
// values into Russian, per the schema hint.
func (r *Repairer) RepairJSON(ctx context.Context, badText, schemaHint string) (string, error) {
	return r.gw.Dispatch(ctx, []llm.Message{
		llm.System("Верни ТОЛЬКО один валидный JSON по схеме ниже.\n" +
			"Ключи JSON оставь ТОЧНО как в схеме (ключи могут быть на латинице).\n" +
			"ЗНАЧЕНИЯ пиши ТОЛЬКО русской кириллицей.\n" +
			"Запрещены транслит, латиница и иероглифы В ЗНАЧЕНИЯХ.\n" +
			"Схема:\n" + schemaHint + "\n" +
			"Никакого текста до/после."),
		llm.User(badText),
	})
}

// RepairQuestion asks the model to rewrite a failed interview question as one
// short Russian interrogative sentence.
func (r *Repairer) RepairQuestion(ctx context.Context, badAnswer, lastUser string) (string, error) {
	return r.gw.Dispatch(ctx, []llm.Message{
		llm.System("Перепиши текст в ОДИН вопрос на русском.\n" +
			"Запрещены латиница и иероглифы.\n" +
			"До 12 слов.\n" +
			"Только вопрос со знаком '?'."),
		llm.User("Ответ студента: " + lastUser),
		llm.User("Плохой вопрос: " + badAnswer),
	})
}

// JSONContract describes what a validated payload must satisfy.
type JSONContract struct {
	RequiredKeys []string
	// SchemaHint is the schema text shown to the model on repair.
	SchemaHint string
	// CheckScript enables the Russian-only value constraint.
	CheckScript bool
}

// check runs both contract checks on raw text.
func (c *JSONContract) check(raw string) (map[string]any, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := RequireKeys(payload, c.RequiredKeys...); err != nil {
		return nil, err
	}
	if c.CheckScript {
		if err := CheckScript(payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// ValidJSON validates raw text against the contract, repairing at most once.
// On success the payload and usedFallback=false are returned; once the repair
// also fails it returns the caller's fallback and usedFallback=true. A
// payload is never returned half-valid.
func (r *Repairer) ValidJSON(ctx context.Context, raw string, contract JSONContract, fallback map[string]any) (map[string]any, bool) {
	payload, err := contract.check(raw)
	if err == nil {
		return payload, false
	}
	r.log.Debug("model output failed validation, repairing once", zap.Error(err))

	// A script violation repairs best from the parsed object: re-serializing
	// keeps the keys the model already got right.
	input := raw
	if payload2, extractErr := ExtractJSON(raw); extractErr == nil {
		if data, marshalErr := json.Marshal(payload2); marshalErr == nil {
			input = string(data)
		}
	}

	repaired, err := r.RepairJSON(ctx, input, contract.SchemaHint)
	if err == nil {
		if payload, checkErr := contract.check(repaired); checkErr == nil {
			return payload, false
		}
	}

	r.log.Warn("repair attempt failed, using deterministic fallback", zap.Error(err))
	return fallback, true
}

// ValidQuestion validates a free-text interview question, repairing at most
// once, then falling back to the supplied deterministic question.
func (r *Repairer) ValidQuestion(ctx context.Context, answer, lastUser, fallback string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if QuestionOK(answer) {
		return answer, false
	}

	repaired, err := r.RepairQuestion(ctx, answer, lastUser)
	if err == nil {
		repaired = strings.TrimSpace(repaired)
		if QuestionOK(repaired) {
			return repaired, false
		}
	}

	r.log.Warn("question repair failed, using deterministic fallback", zap.Error(err))
	return fallback, true
}
