// Package coach содержит AI-тренера: диалог с языковой моделью
// через chat-completions API.
package coach

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
)

// Message одно сообщение диалога с моделью.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient определяет клиента chat-completions API.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// systemPrompt задаёт роль модели. Тренер не врач: медицинские
// вопросы переадресуются специалисту.
const systemPrompt = `You are a friendly fitness coach inside a workout tracking app.
Give practical, encouraging advice about training, recovery and nutrition.
Keep answers short and concrete. You are not a doctor: for medical concerns,
tell the user to consult a professional.`

// Service реализует диалог пользователя с AI-тренером.
type Service struct {
	client CompletionClient
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(client CompletionClient, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// Chat отправляет сообщение пользователя модели и возвращает ответ.
func (s *Service) Chat(ctx context.Context, uid, message string) (string, error) {
	reply, err := s.client.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		return "", err
	}

	s.log.Info("coach reply generated", sl.Uid(uid))
	return reply, nil
}
