package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/domain"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/registry"
	"github.com/feral-file/ff-registry/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// RegisterEntry lists a new service under the owner, paid for by the payer
	// POST /api/v1/registry/entries
	RegisterEntry(c *gin.Context)

	// ListEntries pages through the registry. Rejected entries are hidden unless status is given.
	// GET /api/v1/registry/entries?category=<category>&status=<status>&limit=<limit>&offset=<offset>
	ListEntries(c *gin.Context)

	// LookupEntry resolves an entry by its service URL
	// GET /api/v1/registry/entries/lookup?url=<url>
	LookupEntry(c *gin.Context)

	// GetEntry reads one entry
	// GET /api/v1/registry/entries/:owner/:id
	GetEntry(c *gin.Context)

	// UpdateEntry changes the listing fields of an entry; the payer must be the owner
	// PATCH /api/v1/registry/entries/:owner/:id
	UpdateEntry(c *gin.Context)

	// DeleteEntry removes an entry after proof of ownership
	// DELETE /api/v1/registry/entries/:owner/:id
	DeleteEntry(c *gin.Context)

	// TransferEntry moves an entry to a new owner after proof of ownership
	// POST /api/v1/registry/entries/:owner/:id/transfer
	TransferEntry(c *gin.Context)

	// ListMyEntries lists every entry of an owner, including rejected ones, after proof of ownership
	// POST /api/v1/registry/owners/:owner/entries
	ListMyEntries(c *gin.Context)

	// VerifyEntry marks an entry verified (admin)
	// POST /api/v1/admin/registry/entries/:owner/:id/verify
	VerifyEntry(c *gin.Context)

	// RejectEntry marks an entry rejected (admin)
	// POST /api/v1/admin/registry/entries/:owner/:id/reject
	RejectEntry(c *gin.Context)

	// ListByStatus lists one status bucket (admin)
	// GET /api/v1/admin/registry/status/:status
	ListByStatus(c *gin.Context)

	// Reconcile rebuilds the indexes from the primary records (admin)
	// POST /api/v1/admin/registry/reconcile
	Reconcile(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug         bool
	directory     registry.Directory
	authenticator auth.Authenticator
	payments      PaymentResolver
	blacklist     registry.BlacklistRegistry
	kv            store.KVStore
	clock         adapter.Clock
}

// NewHandler creates a new REST API handler. blacklist may be nil.
func NewHandler(
	debug bool,
	directory registry.Directory,
	authenticator auth.Authenticator,
	payments PaymentResolver,
	blacklist registry.BlacklistRegistry,
	kv store.KVStore,
	clock adapter.Clock,
) Handler {
	return &handler{
		debug:         debug,
		directory:     directory,
		authenticator: authenticator,
		payments:      payments,
		blacklist:     blacklist,
		kv:            kv,
		clock:         clock,
	}
}

func (h *handler) RegisterEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	payer, ok := h.resolvePayer(c)
	if !ok {
		return
	}
	if payer == "" {
		respondUnauthorized(c, "Payment required", "registration must be paid")
		return
	}

	owner := payer
	if req.Owner != "" {
		normalized, err := domain.NormalizeAddress(req.Owner)
		if err != nil {
			respondDomainError(c, err, "Invalid owner")
			return
		}
		owner = normalized
	}

	canonicalURL, err := domain.CanonicalizeURL(req.URL)
	if err != nil {
		respondDomainError(c, err, "Invalid url")
		return
	}

	if h.blacklist != nil {
		if h.blacklist.IsHostBlacklisted(canonicalURL) {
			respondForbidden(c, "Host is blacklisted", domain.HostOf(canonicalURL))
			return
		}
		if h.blacklist.IsOwnerBlacklisted(owner) {
			respondForbidden(c, "Owner is blacklisted", owner)
			return
		}
	}

	existing, err := h.directory.GetByURL(ctx, canonicalURL)
	switch {
	case err == nil:
		c.JSON(http.StatusConflict, errorResponse{apierrors.NewConflictError(
			"URL is already registered", fmt.Sprintf("registered owner: %s", existing.Owner))})
		return
	case !errors.Is(err, domain.ErrNotFound):
		respondDomainError(c, err, "Failed to register entry")
		return
	}

	now := h.clock.Now().UTC()
	entry := &domain.RegistryEntry{
		ID:           domain.EntryID(canonicalURL),
		URL:          canonicalURL,
		Name:         req.Name,
		Description:  req.Description,
		Owner:        owner,
		Status:       domain.StatusUnverified,
		Category:     req.Category,
		Tags:         req.Tags,
		ProbeData:    req.ProbeData,
		RegisteredAt: now,
		UpdatedAt:    now,
		RegisteredBy: payer,
	}
	if err := h.directory.Save(ctx, entry); err != nil {
		respondDomainError(c, err, "Failed to register entry")
		return
	}

	logger.InfoCtx(ctx, "Registry entry registered",
		zap.String("id", entry.ID),
		zap.String("owner", entry.Owner),
		zap.String("registered_by", entry.RegisteredBy))
	c.JSON(http.StatusCreated, entry)
}

func (h *handler) ListEntries(c *gin.Context) {
	var query dto.ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	entries, total, err := h.directory.ListAll(c.Request.Context(), registry.ListFilter{
		Category:        query.Category,
		Status:          domain.Status(query.Status),
		ExcludeRejected: query.Status == "",
		Limit:           query.Limit,
		Offset:          query.Offset,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to list entries")
		return
	}
	if entries == nil {
		entries = []*domain.RegistryEntry{}
	}

	c.JSON(http.StatusOK, dto.ListEntriesResponse{
		Entries: entries,
		Total:   total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
}

func (h *handler) LookupEntry(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondBadRequest(c, "url is required")
		return
	}

	entry, err := h.directory.GetByURL(c.Request.Context(), rawURL)
	if err != nil {
		respondDomainError(c, err, "Failed to look up entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *handler) GetEntry(c *gin.Context) {
	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *handler) UpdateEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}

	payer, ok := h.resolvePayer(c)
	if !ok {
		return
	}
	if payer == "" {
		respondDomainError(c, domain.ErrMissingCredential, "Payment required")
		return
	}
	if !domain.SameIdentity(payer, entry.Owner) {
		respondUnauthorized(c, "Payer is not the owner", fmt.Sprintf("registered owner: %s", entry.Owner))
		return
	}

	req.Apply(entry)
	entry.UpdatedAt = h.clock.Now().UTC()
	if err := h.directory.Save(ctx, entry); err != nil {
		respondDomainError(c, err, "Failed to update entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *handler) DeleteEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DeleteEntryRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}

	if !h.proveOwnership(c, entry, req.SignedRequest, auth.ActionDeleteEndpoint, auth.MessageParams{
		URL:   entry.URL,
		Owner: entry.Owner,
	}) {
		return
	}

	if err := h.directory.Delete(ctx, entry.Owner, entry.ID); err != nil {
		respondDomainError(c, err, "Failed to delete entry")
		return
	}

	logger.InfoCtx(ctx, "Registry entry deleted",
		zap.String("id", entry.ID),
		zap.String("owner", entry.Owner))
	c.JSON(http.StatusOK, dto.DeleteEntryResponse{
		Owner:   entry.Owner,
		ID:      entry.ID,
		Deleted: true,
	})
}

func (h *handler) TransferEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TransferEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}
	newOwner, err := domain.NormalizeAddress(req.NewOwner)
	if err != nil {
		respondDomainError(c, err, "Invalid new owner")
		return
	}

	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}

	// checked before the proof so that a challenge is not spent on a doomed request
	if domain.SameIdentity(entry.Owner, newOwner) {
		respondDomainError(c, domain.ErrSelfTransfer, "Invalid new owner")
		return
	}
	if h.blacklist != nil && h.blacklist.IsOwnerBlacklisted(newOwner) {
		respondForbidden(c, "New owner is blacklisted", newOwner)
		return
	}

	if !h.proveOwnership(c, entry, req.SignedRequest, auth.ActionTransferOwnership, auth.MessageParams{
		URL:      entry.URL,
		Owner:    entry.Owner,
		NewOwner: newOwner,
	}) {
		return
	}

	transferred, err := h.directory.TransferOwner(ctx, entry, newOwner)
	if err != nil {
		respondDomainError(c, err, "Failed to transfer entry")
		return
	}
	c.JSON(http.StatusOK, transferred)
}

func (h *handler) ListMyEntries(c *gin.Context) {
	ctx := c.Request.Context()

	owner, err := domain.NormalizeAddress(c.Param("owner"))
	if err != nil {
		respondDomainError(c, err, "Invalid owner")
		return
	}

	var req dto.ListMyEntriesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	switch {
	case req.HasTimestampedSignature():
		message, err := auth.BuildMessage(auth.ActionListMyEndpoints, auth.MessageParams{
			Owner:     owner,
			Timestamp: req.Timestamp,
		})
		if err != nil {
			respondDomainError(c, err, "Invalid signed message")
			return
		}
		if err := h.authenticator.VerifyTimestamped(ctx, h.authenticator.Domain(), message, req.Signature, owner, req.Timestamp); err != nil {
			respondDomainError(c, err, "Ownership proof failed")
			return
		}

	case req.HasChallengeResponse():
		if err := h.authenticator.VerifyChallenge(ctx, req.ChallengeID, req.Signature, owner); err != nil {
			respondDomainError(c, err, "Ownership proof failed")
			return
		}

	default:
		payer, ok := h.resolvePayer(c)
		if !ok {
			return
		}
		if payer == "" || !domain.SameIdentity(payer, owner) {
			respondDomainError(c, domain.ErrMissingCredential, "Signature or payment by the owner required")
			return
		}
	}

	entries, err := h.directory.ListByOwner(ctx, owner)
	if err != nil {
		respondDomainError(c, err, "Failed to list entries")
		return
	}
	if entries == nil {
		entries = []*domain.RegistryEntry{}
	}
	c.JSON(http.StatusOK, dto.OwnerEntriesResponse{
		Owner:   owner,
		Entries: entries,
	})
}

func (h *handler) VerifyEntry(c *gin.Context) {
	h.updateStatus(c, domain.StatusVerified)
}

func (h *handler) RejectEntry(c *gin.Context) {
	h.updateStatus(c, domain.StatusRejected)
}

func (h *handler) ListByStatus(c *gin.Context) {
	status := domain.Status(c.Param("status"))
	if !status.Valid() {
		respondBadRequest(c, "Invalid status", string(status))
		return
	}

	entries, err := h.directory.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondDomainError(c, err, "Failed to list entries")
		return
	}
	if entries == nil {
		entries = []*domain.RegistryEntry{}
	}
	c.JSON(http.StatusOK, dto.ListEntriesResponse{
		Entries: entries,
		Total:   len(entries),
		Limit:   len(entries),
	})
}

func (h *handler) Reconcile(c *gin.Context) {
	report, err := h.directory.Reconcile(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "Reconciliation failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.kv.Ping(c.Request.Context()); err != nil {
		logger.WarnCtx(c.Request.Context(), "Storage health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "unhealthy",
			Storage: "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Storage: "ok",
	})
}

// updateStatus changes the status of the entry named by the path
func (h *handler) updateStatus(c *gin.Context, status domain.Status) {
	entry, err := h.directory.UpdateStatus(c.Request.Context(), c.Param("owner"), c.Param("id"), status)
	if err != nil {
		respondDomainError(c, err, "Failed to update status")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// loadEntry reads the entry named by the :owner and :id path parameters
func (h *handler) loadEntry(c *gin.Context) (*domain.RegistryEntry, bool) {
	entry, err := h.directory.GetByOwnerAndID(c.Request.Context(), c.Param("owner"), c.Param("id"))
	if err != nil {
		respondDomainError(c, err, "Failed to get entry")
		return nil, false
	}
	return entry, true
}

// resolvePayer returns the payer of the request, "" when unpaid
func (h *handler) resolvePayer(c *gin.Context) (string, bool) {
	payer, err := h.payments.ResolvePayer(c.Request)
	if err != nil {
		respondDomainError(c, err, "Invalid payment credential")
		return "", false
	}
	return payer, true
}

// proveOwnership checks the proof carried by req against the entry owner.
// Without a signature a challenge is issued and returned with 401.
func (h *handler) proveOwnership(
	c *gin.Context,
	entry *domain.RegistryEntry,
	req dto.SignedRequest,
	action auth.Action,
	params auth.MessageParams,
) bool {
	ctx := c.Request.Context()

	var err error
	switch {
	case req.HasChallengeResponse():
		err = h.authenticator.VerifyChallenge(ctx, req.ChallengeID, req.Signature, entry.Owner)

	case req.HasTimestampedSignature():
		params.Timestamp = req.Timestamp
		message, buildErr := auth.BuildMessage(action, params)
		if buildErr != nil {
			respondDomainError(c, buildErr, "Invalid signed message")
			return false
		}
		err = h.authenticator.VerifyTimestamped(ctx, h.authenticator.Domain(), message, req.Signature, entry.Owner, req.Timestamp)

	default:
		challenge, err := h.authenticator.IssueChallenge(ctx, entry.Owner)
		if err != nil {
			respondDomainError(c, err, "Failed to issue challenge")
			return false
		}
		c.JSON(http.StatusUnauthorized, dto.ChallengeRequiredResponse{
			Error:     apierrors.NewChallengeRequiredError(),
			Challenge: challenge,
		})
		return false
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotAuthorized) {
			logger.InfoCtx(ctx, "Ownership proof rejected",
				zap.Error(err),
				zap.String("action", string(action)),
				zap.String("id", entry.ID))
			respondUnauthorized(c, "Ownership proof failed", err.Error(), fmt.Sprintf("registered owner: %s", entry.Owner))
			return false
		}
		respondDomainError(c, err, "Ownership proof failed")
		return false
	}
	return true
}

// bindOptionalJSON binds the body when there is one
func bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return false
	}
	return true
}
