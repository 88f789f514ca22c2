package restapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ConnectWalletPrompt is returned by the dashboard endpoint while no account is connected.
const ConnectWalletPrompt = "Connect a wallet to view its portfolio."

// APIDashboardResponse is the rendered dashboard.
type APIDashboardResponse struct {
	Connected       bool                      `json:"connected"`
	Message         string                    `json:"message,omitempty"`
	Account         *entity.Account           `json:"account,omitempty"`
	Cluster         entity.Cluster            `json:"cluster"`
	NativeFormatted string                    `json:"nativeFormatted,omitempty"`
	Snapshot        *entity.PortfolioSnapshot `json:"snapshot,omitempty"`
	IsLoading       bool                      `json:"isLoading"`
	Error           string                    `json:"error,omitempty"`
	Generation      uint64                    `json:"generation"`
}

// APIErrorResponse is the body of every non-2xx response.
type APIErrorResponse struct {
	Error string `json:"error"`
}

type connectAccountRequest struct {
	Address string `json:"address" binding:"required"`
}

type selectClusterRequest struct {
	Cluster string `json:"cluster" binding:"required"`
}

// DashboardHandler serves the session-bound dashboard and the stateless lookups.
type DashboardHandler struct {
	dashboard    port.DashboardService
	portfolio    port.PortfolioService
	metadata     port.TokenMetadataService
	clusters     port.ClusterProvider
	logger       port.Logger
	fetchTimeout time.Duration
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(
	ds port.DashboardService,
	ps port.PortfolioService,
	md port.TokenMetadataService,
	cp port.ClusterProvider,
	l port.Logger,
	fetchTimeout time.Duration,
) *DashboardHandler {
	return &DashboardHandler{
		dashboard:    ds,
		portfolio:    ps,
		metadata:     md,
		clusters:     cp,
		logger:       l.With("component", "DashboardHandler"),
		fetchTimeout: fetchTimeout,
	}
}

func renderDashboard(st entity.DashboardState) APIDashboardResponse {
	resp := APIDashboardResponse{
		Connected:  st.Account != nil,
		Account:    st.Account,
		Cluster:    st.Cluster,
		Snapshot:   st.Snapshot,
		IsLoading:  st.IsLoading,
		Error:      st.Error,
		Generation: st.Generation,
	}
	if !resp.Connected {
		resp.Message = ConnectWalletPrompt
	}
	if st.Snapshot != nil {
		resp.NativeFormatted = utils.FormatSOL(st.Snapshot.NativeBalance)
	}
	return resp
}

// GetDashboardHandler godoc
// GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboardHandler(c *gin.Context) {
	c.JSON(http.StatusOK, renderDashboard(h.dashboard.State()))
}

// RefreshHandler godoc
// POST /api/v1/dashboard/refresh
func (h *DashboardHandler) RefreshHandler(c *gin.Context) {
	err := h.dashboard.Refresh(c.Request.Context())
	switch {
	case errors.Is(err, entity.ErrNoAccount):
		c.JSON(http.StatusPreconditionFailed, APIErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, entity.ErrRefreshInFlight):
		c.JSON(http.StatusConflict, APIErrorResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("Refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: entity.GenericErrorMessage})
		return
	}
	c.JSON(http.StatusAccepted, renderDashboard(h.dashboard.State()))
}

// ConnectAccountHandler godoc
// PUT /api/v1/session/account
func (h *DashboardHandler) ConnectAccountHandler(c *gin.Context) {
	var req connectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "request body must contain an address"})
		return
	}
	if err := h.dashboard.ConnectAccount(req.Address); err != nil {
		if errors.Is(err, entity.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Connect account failed", "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: entity.GenericErrorMessage})
		return
	}
	c.JSON(http.StatusOK, renderDashboard(h.dashboard.State()))
}

// DisconnectAccountHandler godoc
// DELETE /api/v1/session/account
func (h *DashboardHandler) DisconnectAccountHandler(c *gin.Context) {
	h.dashboard.DisconnectAccount()
	c.JSON(http.StatusOK, renderDashboard(h.dashboard.State()))
}

// SelectClusterHandler godoc
// PUT /api/v1/session/cluster
func (h *DashboardHandler) SelectClusterHandler(c *gin.Context) {
	var req selectClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "request body must contain a cluster"})
		return
	}
	if err := h.dashboard.SelectCluster(req.Cluster); err != nil {
		if errors.Is(err, entity.ErrUnknownCluster) {
			c.JSON(http.StatusNotFound, APIErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: entity.GenericErrorMessage})
		return
	}
	c.JSON(http.StatusOK, renderDashboard(h.dashboard.State()))
}

// ListClustersHandler godoc
// GET /api/v1/clusters
func (h *DashboardHandler) ListClustersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"clusters": h.clusters.GetAllClusters(),
		"default":  h.clusters.DefaultCluster().Identifier,
	})
}

// GetPortfolioHandler godoc
// GET /api/v1/portfolios/:address?cluster=devnet
// Aggregates one address without touching the session.
func (h *DashboardHandler) GetPortfolioHandler(c *gin.Context) {
	address := strings.TrimSpace(c.Param("address"))
	if err := utils.ValidateAddress(address); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
		return
	}

	cluster := h.clusters.DefaultCluster()
	if id := c.Query("cluster"); id != "" {
		var ok bool
		if cluster, ok = h.clusters.GetClusterByIdentifier(id); !ok {
			c.JSON(http.StatusNotFound, APIErrorResponse{Error: entity.ErrUnknownCluster.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
	defer cancel()

	snapshot, err := h.portfolio.FetchPortfolio(ctx, &entity.Account{Address: address}, cluster)
	if err != nil {
		h.logger.Error("Portfolio lookup failed", "address", address, "cluster", cluster.Identifier, "error", err)
		c.JSON(http.StatusBadGateway, APIErrorResponse{Error: entity.GenericErrorMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":         address,
		"nativeFormatted": utils.FormatSOL(snapshot.NativeBalance),
		"snapshot":        snapshot,
	})
}

// GetTokenHandler godoc
// GET /api/v1/tokens/:mint
func (h *DashboardHandler) GetTokenHandler(c *gin.Context) {
	mint := strings.TrimSpace(c.Param("mint"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
	defer cancel()

	meta, found, err := h.metadata.Resolve(ctx, mint)
	if err != nil {
		h.logger.Error("Token metadata lookup failed", "mint", mint, "error", err)
		c.JSON(http.StatusBadGateway, APIErrorResponse{Error: entity.GenericErrorMessage})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: entity.ErrTokenNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}
