package handler

import (
	"roomchat/internal/app/chat"
	"roomchat/internal/configs"
)

// AppDeps bundles the services the HTTP layer delegates to.
type AppDeps struct {
	Manager   *chat.Manager
	Directory *chat.Directory
	Channel   *chat.Channel
	Config    *configs.AppConfig
}
