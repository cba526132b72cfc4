package tool

import (
	"fmt"

	"github.com/hupe1980/tutormesh/content"
	"github.com/hupe1980/tutormesh/internal/util"
	"github.com/hupe1980/tutormesh/session"
)

// createFlashCardArgs are the arguments for the create_flash_card tool.
type createFlashCardArgs struct {
	Question string `json:"question" description:"The question or front side of the flash card"`
	Answer   string `json:"answer" description:"The answer or back side of the flash card"`
}

// flipFlashCardArgs are the arguments for the flip_flash_card tool.
type flipFlashCardArgs struct {
	CardID string `json:"card_id" description:"The ID of the flash card to flip"`
}

// createQuizArgs are the arguments for the create_quiz tool.
type createQuizArgs struct {
	Questions []content.QuizQuestionInput `json:"questions" description:"The quiz questions, each with its answer options"`
}

// NewCreateFlashCardTool returns the tool the model calls to create a flash
// card and display it to the user. The card is committed to the store before
// the push is attempted; a missing client only softens the acknowledgment.
func NewCreateFlashCardTool(sess *session.Session) Tool {
	return NewFunctionToolFromStruct(
		"create_flash_card",
		"Create a new flash card and display it to the user",
		createFlashCardArgs{},
		func(toolCtx *Context, args map[string]any) (any, error) {
			question, _ := args["question"].(string)
			answer, _ := args["answer"].(string)

			card, index := sess.Store().AddFlashCard(question, answer)
			return sess.Dispatcher().PushFlashCardCreated(toolCtx.Context(), card, index), nil
		},
	)
}

// NewFlipFlashCardTool returns the tool the model calls to flip a card. An
// unknown id yields a plain not-found message rather than a tool error so
// the model can recover conversationally.
func NewFlipFlashCardTool(sess *session.Session) Tool {
	return NewFunctionToolFromStruct(
		"flip_flash_card",
		"Flip a flash card to show the answer or question",
		flipFlashCardArgs{},
		func(toolCtx *Context, args map[string]any) (any, error) {
			cardID, _ := args["card_id"].(string)

			card, err := sess.Store().FlipFlashCard(cardID)
			if err != nil {
				return fmt.Sprintf("Flash card with ID %s not found.", cardID), nil
			}
			return sess.Dispatcher().PushFlashCardFlipped(toolCtx.Context(), card), nil
		},
	)
}

// NewCreateQuizTool returns the tool the model calls to create a multiple
// choice quiz and display it to the user.
func NewCreateQuizTool(sess *session.Session) Tool {
	return NewFunctionToolFromStruct(
		"create_quiz",
		"Create a new quiz with multiple choice questions and display it to the user",
		createQuizArgs{},
		func(toolCtx *Context, args map[string]any) (any, error) {
			var decoded createQuizArgs
			if err := util.DecodeArgs(args, &decoded); err != nil {
				return nil, NewToolError("create_quiz", err.Error(), "VALIDATION_ERROR")
			}

			quiz := sess.Store().AddQuiz(decoded.Questions)
			return sess.Dispatcher().PushQuizCreated(toolCtx.Context(), quiz), nil
		},
	)
}

// TutorTools returns all tutoring tools bound to a session.
func TutorTools(sess *session.Session) []Tool {
	return []Tool{
		NewCreateFlashCardTool(sess),
		NewFlipFlashCardTool(sess),
		NewCreateQuizTool(sess),
	}
}
