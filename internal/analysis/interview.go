package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/llm"
)

// MaxQuestions caps how many questions one interview asks.
const MaxQuestions = 6

const interviewSystemPrompt = "Ты — карьерный интервьюер VECTOR AI.\n" +
	"СТРОГО:\n" +
	"1) Пиши ТОЛЬКО по-русски (кириллица). Запрещены латиница, транслит и иероглифы.\n" +
	"2) Верни ОДИН вопрос за раз.\n" +
	"3) Вопрос до 12 слов и обязательно заканчивается '?'.\n" +
	"4) Никаких объяснений/списков/приветствий.\n" +
	"5) Если ответ общий — задай один уточняющий вопрос.\n" +
	"Собирай: interests, thinking_style, motivation, environment, skills.\n"

// OpeningQuestion starts every interview before the model is involved.
const OpeningQuestion = "Привет! Расскажи, что тебе больше всего нравится делать?"

const (
	fallbackQuestion  = "Можешь привести конкретный пример из недавней ситуации?"
	interviewDoneText = "Готово. Жми «Завершить и анализировать»."
)

// InterviewReply is the outcome of one interview turn.
type InterviewReply struct {
	Answer        string `json:"answer"`
	QuestionCount int    `json:"q_count"`
	Done          bool   `json:"done"`
	UsedFallback  bool   `json:"-"`
}

// questionCount counts assistant turns that ended with a question mark; only
// those advance the interview toward its cap.
func questionCount(history []llm.Message) int {
	count := 0
	for _, m := range history {
		if m.Role == llm.RoleAssistant && strings.HasSuffix(strings.TrimSpace(m.Content), "?") {
			count++
		}
	}
	return count
}

// InterviewTurn runs one turn: admit under the per-seeker limit, stop at the
// question cap, otherwise ask the model and force the answer into a short
// Russian question (one repair attempt, then the fixed fallback).
func (s *Service) InterviewTurn(ctx context.Context, seekerID string, history []llm.Message, userMsg string) (*InterviewReply, error) {
	userMsg = strings.TrimSpace(userMsg)
	if userMsg == "" {
		return nil, ErrEmptyMessage
	}

	if err := s.allow("interview", seekerID, interviewLimit, interviewWindow); err != nil {
		return nil, err
	}

	asked := questionCount(history)
	if asked >= MaxQuestions {
		return &InterviewReply{Answer: interviewDoneText, QuestionCount: MaxQuestions, Done: true}, nil
	}

	convo := make([]llm.Message, 0, len(history)+2)
	if len(history) == 0 || history[0].Role != llm.RoleSystem {
		convo = append(convo, llm.System(interviewSystemPrompt))
	}
	convo = append(convo, history...)
	convo = append(convo, llm.User(userMsg))

	answer, err := s.gateway.Dispatch(ctx, convo)
	if err != nil {
		return nil, fmt.Errorf("interview turn failed: %w", err)
	}

	question, usedFallback := s.repairer.ValidQuestion(ctx, answer, userMsg, fallbackQuestion)
	if usedFallback {
		s.log.Info("interview answer replaced with fallback question",
			zap.String("seeker_id", seekerID))
	}

	return &InterviewReply{
		Answer:        question,
		QuestionCount: asked + 1,
		Done:          false,
		UsedFallback:  usedFallback,
	}, nil
}
