package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	referralsSubmittedTotal atomic.Uint64
	referralsDeletedTotal   atomic.Uint64
	statusUpdatesTotal      atomic.Uint64
	resumeDownloadsTotal    atomic.Uint64
	loginSucceededTotal     atomic.Uint64
	loginFailedTotal        atomic.Uint64

	uploadBytes = newHistogram([]float64{10 << 10, 100 << 10, 512 << 10, 1 << 20, 2 << 20, 5 << 20, 10 << 20})
)

// IncReferralSubmitted increments the submitted counter.
func IncReferralSubmitted() {
	referralsSubmittedTotal.Add(1)
}

// IncReferralDeleted increments the deleted counter.
func IncReferralDeleted() {
	referralsDeletedTotal.Add(1)
}

// IncStatusUpdated increments the status update counter.
func IncStatusUpdated() {
	statusUpdatesTotal.Add(1)
}

// IncResumeDownloaded increments the résumé download counter.
func IncResumeDownloaded() {
	resumeDownloadsTotal.Add(1)
}

// IncLogin counts a login attempt by outcome.
func IncLogin(ok bool) {
	if ok {
		loginSucceededTotal.Add(1)
		return
	}
	loginFailedTotal.Add(1)
}

// ObserveUploadBytes records the size of a stored résumé.
func ObserveUploadBytes(value float64) {
	if value < 0 {
		value = 0
	}
	uploadBytes.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "referrals_submitted_total", "Total referrals submitted", referralsSubmittedTotal.Load())
	writeCounter(&buf, "referrals_deleted_total", "Total referrals deleted", referralsDeletedTotal.Load())
	writeCounter(&buf, "referral_status_updates_total", "Total referral status updates", statusUpdatesTotal.Load())
	writeCounter(&buf, "resume_downloads_total", "Total resume downloads", resumeDownloadsTotal.Load())
	writeCounter(&buf, "admin_login_succeeded_total", "Total successful admin logins", loginSucceededTotal.Load())
	writeCounter(&buf, "admin_login_failed_total", "Total failed admin logins", loginFailedTotal.Load())
	writeHistogram(&buf, "resume_upload_bytes", "Stored resume size in bytes", uploadBytes.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
