package catalog

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApologyMessage is stored as the assistant's turn when no answer could be generated.
const ApologyMessage = "I'm sorry, I couldn't process your request at the moment. Please try again later."

// chatHistoryLimit is how many earlier messages are handed to the generator.
const chatHistoryLimit = 10

// ChatReply holds the two messages a chat turn appends.
type ChatReply struct {
	UserMessage      models.ChatMessage
	AssistantMessage models.ChatMessage
	// Failed is set when AssistantMessage is the apology.
	Failed bool
}

// thread finds the user's thread for a book, creating it on first use.
func (s *Service) thread(ctx context.Context, userID, bookID primitive.ObjectID) (*models.ChatThread, error) {
	thread, err := s.Store.FindChatThread(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("find chat thread: %w", err)
	}
	if thread != nil {
		return thread, nil
	}
	thread = &models.ChatThread{UserID: userID, BookID: bookID, CreatedAt: s.now()}
	id, err := s.Store.InsertChatThread(ctx, thread)
	if err != nil {
		return nil, fmt.Errorf("create chat thread: %w", err)
	}
	thread.ID = id
	return thread, nil
}

// ChatHistory returns the user's messages about a book, oldest first. The book must exist.
func (s *Service) ChatHistory(ctx context.Context, userID, bookID primitive.ObjectID) ([]models.ChatMessage, error) {
	if _, err := s.Book(ctx, bookID); err != nil {
		return nil, err
	}
	thread, err := s.thread(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.Store.ChatMessages(ctx, thread.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

// Chat appends the user's question to the thread and answers it. A generator failure is not an
// error: the apology is stored as the answer and the reply is marked Failed.
func (s *Service) Chat(ctx context.Context, userID, bookID primitive.ObjectID, question string) (*ChatReply, error) {
	if question == "" {
		return nil, validationError("message is required")
	}
	view, err := s.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	thread, err := s.thread(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.RecentChatMessages(ctx, thread.ID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	userMsg, err := s.appendMessage(ctx, thread.ID, models.ChatRoleUser, question)
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{UserMessage: *userMsg}
	answer, err := s.Generator.Chat(ctx, bookContext(*view), question, history)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("book", bookID.Hex()).Msg("chat generation failed")
		answer = ApologyMessage
		reply.Failed = true
	}
	assistantMsg, err := s.appendMessage(ctx, thread.ID, models.ChatRoleAssistant, answer)
	if err != nil {
		return nil, err
	}
	reply.AssistantMessage = *assistantMsg
	return reply, nil
}

func (s *Service) appendMessage(ctx context.Context, chatID primitive.ObjectID, role, content string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{ChatID: chatID, Role: role, Content: content, Timestamp: s.now()}
	id, err := s.Store.InsertChatMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("save %s message: %w", role, err)
	}
	msg.ID = id
	return msg, nil
}
