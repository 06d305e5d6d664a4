// Package api wires gradecoin's HTTP surface onto gin: Component J. One
// *gin.Engine serves every configured network, each mounted under its own
// disjoint URL prefix (Component G).
package api

import (
	"crypto/rsa"

	"github.com/gin-gonic/gin"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/network"
)

// NewRouter builds the single *gin.Engine that serves every loaded
// network, each under its own url_prefix route group.
func NewRouter(networks []*network.Network, serverKey *rsa.PrivateKey) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(requestID(), cors())
	r.HandleMethodNotAllowed = true

	for _, net := range networks {
		mount(r, net, serverKey)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, apierr.New(apierr.NotFound))
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, apierr.New(apierr.MethodNotAllowed))
	})

	return r
}

// mount builds one network's route tree under its configured prefix.
func mount(r *gin.Engine, net *network.Network, serverKey *rsa.PrivateKey) {
	h := &handler{net: net, serverKey: serverKey}

	group := r.Group(net.Config.URLPrefix)
	group.Use(bodyLimit())
	{
		group.POST("/register", h.register)

		group.GET("/transaction", h.listTransactions)
		group.POST("/transaction", h.submitTransaction)

		group.GET("/block", h.currentBlock)
		group.POST("/block", h.submitBlock)

		group.GET("/user", h.listUsers)
		group.GET("/config", h.showConfig)
		group.GET("/version", h.showVersion)

		group.GET("/stream", net.Hub.Subscribe)
	}
}
