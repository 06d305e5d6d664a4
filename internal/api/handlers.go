package api

import (
	"crypto/rsa"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/network"
	"github.com/gradecoin/network/pkg/models"
)

// version is the fixed string GET /version reports for this build.
const version = "gradecoin-network/1.0"

// handler binds one network's state to its route group. Every route in a
// network's prefix shares the same handler instance.
type handler struct {
	net       *network.Network
	serverKey *rsa.PrivateKey
}

func (h *handler) register(c *gin.Context) {
	var envelope models.HandshakeEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		respondError(c, bindError(err, apierr.MalformedEnvelope))
		return
	}

	fingerprint, _, aerr := h.net.Register(envelope, h.serverKey)
	if aerr != nil {
		respondError(c, aerr)
		return
	}

	c.JSON(http.StatusCreated, models.Success(fingerprint))
}

func (h *handler) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.net.Pool.Snapshot())
}

func (h *handler) submitTransaction(c *gin.Context) {
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		respondError(c, bindError(err, apierr.PayloadJSONFailed))
		return
	}

	if aerr := h.net.SubmitTransaction(tx, c.GetHeader("Authorization")); aerr != nil {
		respondError(c, aerr)
		return
	}

	c.JSON(http.StatusCreated, models.Success("transaction accepted"))
}

func (h *handler) currentBlock(c *gin.Context) {
	c.JSON(http.StatusOK, h.net.Head.Current())
}

func (h *handler) submitBlock(c *gin.Context) {
	var block models.Block
	if err := c.ShouldBindJSON(&block); err != nil {
		respondError(c, bindError(err, apierr.PayloadJSONFailed))
		return
	}

	if aerr := h.net.SubmitBlock(block, c.GetHeader("Authorization")); aerr != nil {
		respondError(c, aerr)
		return
	}

	c.JSON(http.StatusCreated, models.Success("block accepted"))
}

func (h *handler) listUsers(c *gin.Context) {
	accounts := h.net.Registry.Snapshot()
	out := make([]models.PublicAccount, 0, len(accounts))
	for fingerprint, account := range accounts {
		out = append(out, models.PublicAccount{
			Fingerprint: fingerprint,
			Balance:     account.Balance,
			IsBot:       account.IsBot,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) showConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.net.Config)
}

func (h *handler) showVersion(c *gin.Context) {
	c.JSON(http.StatusOK, models.Success(version))
}
