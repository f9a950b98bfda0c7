package api

import (
	"encoding/base64"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crawlctl/coordinator/internal/apierr"
	"github.com/crawlctl/coordinator/internal/blob"
	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/metadata"
	"github.com/crawlctl/coordinator/internal/normalize"
)

func (h *handlers) requestWork(c *gin.Context) {
	var req RequestWorkRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RunID == "" {
		writeError(c, apierr.New(apierr.CodeInvalidRequest, "missing runId"))
		return
	}

	run, err := h.manager.Get(c.Request.Context(), req.RunID)
	if err != nil {
		writeError(c, apierr.New(apierr.CodeInternalError, "load run: "+err.Error()))
		return
	}

	workerID := req.WorkerID
	if workerID == "" {
		workerID = uuid.New().String()
	}

	batch := run.RequestWork(req.BatchSize)

	h.log.WithRunID(req.RunID).With(logger.String("workerId", workerID), logger.Int("batchSize", len(batch.URLs))).
		Debug("dispatched batch")

	if h.metrics != nil {
		empty := strconv.FormatBool(len(batch.URLs) == 0)
		h.metrics.DispatchesTotal.WithLabelValues(req.RunID, empty).Inc()
		h.metrics.DispatchBatchSize.WithLabelValues(req.RunID).Observe(float64(len(batch.URLs)))
	}
	h.observeRunGauges(req.RunID, run)

	writeOK(c, batch)
}

// reportResult applies §5's "blob write then coordinator report" ordering:
// if content was supplied and the blob write fails, the result is never
// applied to run state.
func (h *handlers) reportResult(c *gin.Context) {
	var req ReportResultRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RunID == "" || req.URL == "" {
		writeError(c, apierr.New(apierr.CodeInvalidRequest, "missing runId or url"))
		return
	}

	run, err := h.manager.Get(c.Request.Context(), req.RunID)
	if err != nil {
		writeError(c, apierr.New(apierr.CodeInternalError, "load run: "+err.Error()))
		return
	}

	if req.Content != "" && h.blob != nil {
		if err := h.writeContentBlob(c, req); err != nil {
			writeError(c, apierr.New(apierr.CodeInternalError, "blob write failed: "+err.Error()))
			return
		}
	}

	report := domain.ResultReport{
		URL:            req.URL,
		Depth:          req.Depth,
		Status:         req.Status,
		ContentHash:    req.ContentHash,
		ContentSize:    req.ContentSize,
		ResponseTimeMs: req.ResponseTimeMs,
		DiscoveredUrls: req.DiscoveredUrls,
		Error:          req.Error,
		FetchedAt:      req.FetchedAt,
	}
	run.ReportResult(report)

	if h.metrics != nil {
		outcome := "success"
		if report.Failed() {
			outcome = "failure"
		}
		h.metrics.ResultsTotal.WithLabelValues(req.RunID, outcome).Inc()
		if req.ResponseTimeMs > 0 {
			h.metrics.ResponseTimeSeconds.WithLabelValues(req.RunID).Observe(float64(req.ResponseTimeMs) / 1000)
		}
	}

	// Page metadata is a best-effort shared resource (§5 "shared-resource
	// policy"): its failure never fails the worker's report.
	if h.metadata != nil {
		host, hostErr := normalize.Host(req.URL)
		if hostErr == nil {
			_ = h.metadata.Upsert(c.Request.Context(), metadata.PageRecord{
				URL:            req.URL,
				Domain:         host,
				Status:         req.Status,
				ContentHash:    req.ContentHash,
				ContentSize:    req.ContentSize,
				ResponseTimeMs: req.ResponseTimeMs,
				FetchedAt:      req.FetchedAt,
				Error:          req.Error,
				RunID:          req.RunID,
			})
		}
	}

	h.observeRunGauges(req.RunID, run)
	writeOK(c, ReportResultResponse{Success: true})
}

func (h *handlers) writeContentBlob(c *gin.Context, req ReportResultRequest) error {
	host, err := normalize.Host(req.URL)
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return err
	}
	key := blob.Key(req.RunID, host, req.ContentHash)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/html"
	}
	return h.blob.Put(c.Request.Context(), key, data, contentType, map[string]string{"url": req.URL})
}

func (h *handlers) onCron(c *gin.Context) {
	var req OnCronRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RunID == "" {
		writeError(c, apierr.New(apierr.CodeInvalidRequest, "missing runId"))
		return
	}

	size, err := h.manager.TickRun(c.Request.Context(), req.RunID)
	if err != nil {
		writeError(c, apierr.New(apierr.CodeInternalError, "maintenance tick: "+err.Error()))
		return
	}

	writeOK(c, OnCronResponse{QueueSize: size})
}
