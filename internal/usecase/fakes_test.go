package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

type memReportRepo struct {
	mu           sync.Mutex
	reports      map[string]*entity.Report
	createErr    error
	incrementErr error
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: map[string]*entity.Report{}}
}

func (r *memReportRepo) Create(_ context.Context, report *entity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *memReportRepo) GetByID(_ context.Context, id string) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, errors.NotFound("Report", nil)
	}
	cp := *report
	return &cp, nil
}

func (r *memReportRepo) UpdateStatus(_ context.Context, report *entity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reports[report.ID]
	if !ok {
		return errors.NotFound("Report", nil)
	}
	stored.Status = report.Status
	stored.InProgressAt = report.InProgressAt
	stored.ResolvedAt = report.ResolvedAt
	return nil
}

func (r *memReportRepo) IncrementDuplicateCount(_ context.Context, id string) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return nil, r.incrementErr
	}
	stored, ok := r.reports[id]
	if !ok {
		return nil, errors.NotFound("Report", nil)
	}
	stored.DuplicateCount++
	cp := *stored
	return &cp, nil
}

func (r *memReportRepo) list(filter func(*entity.Report) bool) []*entity.Report {
	out := []*entity.Report{}
	for _, report := range r.reports {
		if filter(report) {
			cp := *report
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

func (r *memReportRepo) ListByOwner(_ context.Context, ownerID string) ([]*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(rep *entity.Report) bool { return rep.OwnerID == ownerID }), nil
}

func (r *memReportRepo) ListAll(_ context.Context, limit int) ([]*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list(func(*entity.Report) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memReportRepo) CountByStatus(_ context.Context, status entity.ReportStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.list(func(rep *entity.Report) bool { return rep.Status == status }))), nil
}

func (r *memReportRepo) CountByOwnerAndStatus(_ context.Context, ownerID string, status entity.ReportStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.list(func(rep *entity.Report) bool {
		return rep.OwnerID == ownerID && rep.Status == status
	}))), nil
}

func (r *memReportRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

type memIndex struct {
	mu         sync.Mutex
	entries    []entity.IndexEntry
	putErr     error
	nearestErr error
}

func (x *memIndex) Put(_ context.Context, entry *entity.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.putErr != nil {
		return x.putErr
	}
	x.entries = append(x.entries, *entry)
	return nil
}

func (x *memIndex) Nearest(_ context.Context, q repository.NearestQuery) ([]repository.IndexCandidate, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.nearestErr != nil {
		return nil, x.nearestErr
	}
	cells := map[string]bool{}
	for _, c := range q.CellTokens {
		cells[c] = true
	}
	out := []repository.IndexCandidate{}
	for _, e := range x.entries {
		if e.IssueType != q.IssueType || !cells[e.CellToken] {
			continue
		}
		out = append(out, repository.IndexCandidate{
			ReportID:   e.ReportID,
			Lat:        e.Lat,
			Lon:        e.Lon,
			Similarity: cosine(q.Vector, e.Vector),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (x *memIndex) count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
	failFor       map[string]bool
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{failFor: map[string]bool{}}
}

func (r *memNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[n.RecipientID] {
		return errors.Dependency("Failed to create notification", fmt.Errorf("store down"))
	}
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].RecipientID == recipientID {
			cp := *r.notifications[i]
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) byKind(recipientID string, kind entity.NotificationKind) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *memNotificationRepo) all() []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Notification(nil), r.notifications...)
}

type memBadgeRepo struct {
	mu     sync.Mutex
	badges []*entity.Badge
}

func (r *memBadgeRepo) Create(ctx context.Context, badge *entity.Badge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *badge
	r.badges = append(r.badges, &cp)
	return nil
}

func (r *memBadgeRepo) ListByOwner(_ context.Context, ownerID string) ([]*entity.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Badge{}
	for _, b := range r.badges {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBadgeRepo) ExistsForReport(ctx context.Context, reportID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.badges {
		if b.ReportID == reportID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBadgeRepo) forReport(reportID string) []*entity.Badge {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Badge{}
	for _, b := range r.badges {
		if b.ReportID == reportID {
			out = append(out, b)
		}
	}
	return out
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	order    []string
}

func newMemProfileRepo(profiles ...*entity.Profile) *memProfileRepo {
	r := &memProfileRepo{profiles: map[string]*entity.Profile{}}
	for _, p := range profiles {
		_ = r.Upsert(context.Background(), p)
	}
	return r
}

func (r *memProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) Upsert(_ context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; !ok {
		r.order = append(r.order, profile.ID)
	}
	cp := *profile
	r.profiles[profile.ID] = &cp
	return nil
}

func (r *memProfileRepo) ListAll(_ context.Context) ([]*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Profile{}
	for _, id := range r.order {
		cp := *r.profiles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProfileRepo) ListByRole(ctx context.Context, role string) ([]*entity.Profile, error) {
	all, _ := r.ListAll(ctx)
	out := []*entity.Profile{}
	for _, p := range all {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

// stubEmbedder maps known texts to fixed vectors; anything else embeds to fallback.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

type stubGenerator struct {
	mu     sync.Mutex
	output string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.output, g.err
}

// blockingGenerator never answers before its context expires.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string, _ int) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event service.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type memFileService struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
}

func newMemFileService() *memFileService {
	return &memFileService{uploaded: map[string][]byte{}}
}

func (f *memFileService) UploadFile(_ context.Context, file io.Reader, _ string, objectName string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[objectName] = data
	return "https://storage.example.com/media/" + objectName, nil
}

func (f *memFileService) DeleteFile(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *memFileService) Close() error { return nil }

// testEnv wires every use case over in-memory collaborators.
type testEnv struct {
	reports       *memReportRepo
	index         *memIndex
	notifications *memNotificationRepo
	badges        *memBadgeRepo
	profiles      *memProfileRepo
	embedder      *stubEmbedder
	generator     *stubGenerator
	publisher     *recordingPublisher
	files         *memFileService
	tasks         *TaskRunner
	gate          *ReadyEmbedder

	matcher      *DuplicateMatcher
	notifier     *NotificationUseCase
	badgeUC      *BadgeUseCase
	lifecycle    *LifecycleUseCase
	submission   *SubmissionUseCase
	reportsQuery *ReportQueryUseCase
}

const (
	adminID   = "admin-1"
	citizenID = "citizen-1"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop{}

	env := &testEnv{
		reports:       newMemReportRepo(),
		index:         &memIndex{},
		notifications: newMemNotificationRepo(),
		badges:        &memBadgeRepo{},
		profiles: newMemProfileRepo(
			&entity.Profile{ID: adminID, Role: entity.RoleAdmin, Email: "admin@city.gov"},
			&entity.Profile{ID: citizenID, Role: entity.RoleCitizen, Email: "jo@example.com"},
		),
		embedder:  &stubEmbedder{vectors: map[string][]float32{}, fallback: []float32{0, 0, 1}},
		generator: &stubGenerator{output: "Pothole Slayer"},
		publisher: &recordingPublisher{},
		files:     newMemFileService(),
		tasks:     NewTaskRunner(log),
	}

	env.gate = NewReadyEmbedder(env.embedder, log)
	env.gate.MarkReady()

	env.matcher = NewDuplicateMatcher(env.reports, env.index, env.gate, 50, 0.9, log)
	env.notifier = NewNotificationUseCase(env.notifications, env.profiles, env.reports, env.publisher, log)
	env.badgeUC = NewBadgeUseCase(env.badges, env.reports, env.profiles, env.generator, env.notifier, time.Second, log)
	env.lifecycle = NewLifecycleUseCase(env.reports, env.profiles, env.notifier, env.badgeUC, env.tasks, 5*time.Second, log)
	env.submission = NewSubmissionUseCase(env.reports, env.index, env.matcher, env.files, env.notifier, env.tasks, time.Second, 5*time.Second, log)
	env.reportsQuery = NewReportQueryUseCase(env.reports, env.profiles, log)

	t.Cleanup(env.tasks.Wait)
	return env
}

func floatPtr(f float64) *float64 { return &f }
