package document

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/documenthandler"
)

// DocumentRoute wires the document status pass-through.
type DocumentRoute struct {
	handler *documenthandler.DocumentHandler
}

func NewDocumentRoute(handler *documenthandler.DocumentHandler) *DocumentRoute {
	return &DocumentRoute{handler: handler}
}

func (r *DocumentRoute) RegisterRouter(router gin.IRouter) {
	documents := router.Group("/documents")
	documents.POST("", r.handler.Upload)
	documents.GET("/status", r.handler.Status)
}
