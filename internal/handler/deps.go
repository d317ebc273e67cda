package handler

import (
	"fadechat/internal/app/relay"
	"fadechat/internal/app/room"
	"fadechat/internal/app/storage"
	"fadechat/internal/configs"
)

// AppDeps carries the explicitly constructed collaborators the handlers
// work against. StorageService is nil when attachments are disabled.
type AppDeps struct {
	Relay          *relay.Relay
	Store          *room.Store
	Config         *configs.AppConfig
	StorageService storage.StorageService
}
