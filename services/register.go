package services

import (
	"teamspace/mediator"
)

// Register binds every request handler of the services to the builder.
func Register(b *mediator.Builder, tasks *TaskService, chat *ChatService, assistant *AssistantService) {
	mediator.Register(b, tasks.CreateBoard)
	mediator.Register(b, tasks.ListBoards)
	mediator.Register(b, tasks.CreateTask)
	mediator.Register(b, tasks.MoveTask)
	mediator.Register(b, tasks.AssignTask)
	mediator.Register(b, tasks.DeleteTask)
	mediator.Register(b, tasks.GetBoardTasks)

	mediator.Register(b, chat.PostChatMessage)
	mediator.Register(b, chat.GetChatHistory)
	mediator.Register(b, chat.SearchMessages)

	mediator.Register(b, assistant.AskAssistant)
	mediator.Register(b, assistant.GetConversation)
	mediator.Register(b, assistant.ResetConversation)
}
