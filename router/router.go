package router

import (
	"net/http"

	"github.com/ccfos/solo/elect"
	"github.com/ccfos/solo/peers"

	"github.com/gin-gonic/gin"
)

type Router struct {
	elector *elect.Elector
	peers   *peers.Set
}

func New(elector *elect.Elector, peers *peers.Set) *Router {
	return &Router{
		elector: elector,
		peers:   peers,
	}
}

func (rt *Router) Config(r *gin.Engine) {
	service := r.Group("/api/solo")
	service.GET("/status", rt.status)
	service.GET("/peers", rt.activePeers)
}

func (rt *Router) status(c *gin.Context) {
	c.JSON(http.StatusOK, rt.elector.Snapshot())
}

func (rt *Router) activePeers(c *gin.Context) {
	lst, err := rt.peers.ActivePeers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": lst})
}
