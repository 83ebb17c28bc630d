package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/crawler-service/internal/crawler"
	"jobpilot/crawler-service/internal/model"
	"jobpilot/crawler-service/internal/parser"
	"jobpilot/crawler-service/internal/store"
)

// ── in-memory store ──

type fakeStore struct {
	mu        sync.Mutex
	sources   []model.JobSource
	companies map[string]*model.Company      // normalized name -> company
	jobs      map[string]*model.Job          // sourceRepo\x00externalID -> job
	history   map[string]*model.CrawlHistory // id -> latest snapshot

	failHistoryInsert bool
	failNextJobInsert bool

	lastCrawled, nextCrawl time.Time
}

func newFakeStore(sources ...model.JobSource) *fakeStore {
	return &fakeStore{
		sources:   sources,
		companies: make(map[string]*model.Company),
		jobs:      make(map[string]*model.Job),
		history:   make(map[string]*model.CrawlHistory),
	}
}

func (s *fakeStore) LoadActiveSources(ctx context.Context) ([]model.JobSource, error) {
	return s.sources, nil
}

func (s *fakeStore) GetSourceByName(ctx context.Context, name string) (*model.JobSource, error) {
	for i := range s.sources {
		if s.sources[i].Name == name {
			return &s.sources[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) UpdateSourceCrawlTimes(ctx context.Context, id string, last, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCrawled, s.nextCrawl = last, next
	return nil
}

func (s *fakeStore) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.companies[name]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) InsertCompany(ctx context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("company-%d", len(s.companies)+1)
	}
	s.companies[c.Name] = c
	return nil
}

func (s *fakeStore) FindJobID(ctx context.Context, sourceRepo, externalID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[sourceRepo+"\x00"+externalID]; ok {
		return j.ID, nil
	}
	return "", store.ErrNotFound
}

func (s *fakeStore) InsertJob(ctx context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNextJobInsert {
		s.failNextJobInsert = false
		return errors.New("insert rejected")
	}
	if j.ID == "" {
		j.ID = fmt.Sprintf("job-%d", len(s.jobs)+1)
	}
	s.jobs[j.SourceRepo+"\x00"+j.ExternalID] = j
	return nil
}

func (s *fakeStore) UpdateJob(ctx context.Context, id string, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = id
	s.jobs[j.SourceRepo+"\x00"+j.ExternalID] = j
	return nil
}

func (s *fakeStore) InsertCrawlHistory(ctx context.Context, h *model.CrawlHistory) error {
	if s.failHistoryInsert {
		return errors.New("history insert rejected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.history[h.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateCrawlHistory(ctx context.Context, h *model.CrawlHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.history[h.ID] = &cp
	return nil
}

func (s *fakeStore) historyForSource(sourceID string) *model.CrawlHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.history {
		if h.SourceID == sourceID {
			return h
		}
	}
	return nil
}

// ── test scaffolding ──

type fakeLocker struct {
	acquired bool
	released bool
}

func (l *fakeLocker) Acquire(ctx context.Context) (bool, error) { return l.acquired, nil }
func (l *fakeLocker) Release(ctx context.Context) error         { l.released = true; return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFactory() *parser.Factory {
	f := parser.NewFetcher(nil, "")
	f.MaxRetries = 0
	f.RetryDelay = time.Millisecond
	return parser.NewFactory(f)
}

func newOrchestrator(st crawler.Store, lock crawler.Locker) *crawler.Orchestrator {
	return crawler.New(st, testFactory(), lock, quietLogger(), crawler.Config{})
}

func serveMarkdown(t *testing.T, body string) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

const twoJobsTable = `| Company | Role | Location | Apply |
|---|---|---|---|
| Acme Inc. | Backend Engineer | Berlin | [Apply](https://acme.example.com/1) |
| Globex | Data Scientist | Remote | [Apply](https://globex.example.com/2) |
`

func tableSource(id, name, url string) model.JobSource {
	return model.JobSource{
		ID:            id,
		Name:          name,
		URL:           url,
		Format:        model.FormatMarkdownTable,
		IntervalHours: 6,
		IsActive:      true,
	}
}

// ── tests ──

func TestCrawlSource_InsertThenUpdate(t *testing.T) {
	url := serveMarkdown(t, twoJobsTable)
	src := tableSource("src-1", "awesome-jobs", url)
	st := newFakeStore(src)

	h1, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, model.CrawlCompleted, h1.Status)
	assert.Equal(t, 2, h1.JobsFound)
	assert.Equal(t, 2, h1.JobsInserted)
	assert.Equal(t, 0, h1.JobsUpdated)
	assert.Equal(t, 2, h1.CompaniesCreated)

	// a second run, fresh orchestrator, must update every job in place
	h2, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 0, h2.JobsInserted)
	assert.Equal(t, 2, h2.JobsUpdated)
	assert.Equal(t, 0, h2.CompaniesCreated)

	assert.Len(t, st.jobs, 2)
	assert.Len(t, st.companies, 2)
	assert.Equal(t, st.lastCrawled.Add(6*time.Hour), st.nextCrawl)
}

func TestCrawlSource_CompanyDedup(t *testing.T) {
	doc := `| Company | Role | Apply |
|---|---|---|
| Acme Inc. | Backend Engineer | [Apply](https://acme.example.com/1) |
| Acme, Inc | Frontend Engineer | [Apply](https://acme.example.com/2) |
`
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, doc))
	st := newFakeStore(src)

	h, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, h.JobsInserted)
	assert.Equal(t, 1, h.CompaniesCreated)
	require.Len(t, st.companies, 1)
	_, ok := st.companies["Acme"]
	assert.True(t, ok)
}

func TestCrawlAll_SourceFailureIsolated(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	srcA := tableSource("src-a", "broken-source", broken.URL)
	srcB := tableSource("src-b", "healthy-source", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(srcA, srcB)

	err := newOrchestrator(st, nil).CrawlAll(context.Background())
	require.NoError(t, err)

	hA := st.historyForSource("src-a")
	require.NotNil(t, hA)
	assert.Equal(t, model.CrawlFailed, hA.Status)
	assert.NotEmpty(t, hA.ErrorMessage)
	require.NotNil(t, hA.CompletedAt)

	hB := st.historyForSource("src-b")
	require.NotNil(t, hB)
	assert.Equal(t, model.CrawlCompleted, hB.Status)
	assert.Equal(t, 2, hB.JobsInserted)
}

func TestCrawlAll_LockHeld(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(src)

	err := newOrchestrator(st, &fakeLocker{acquired: false}).CrawlAll(context.Background())
	require.ErrorIs(t, err, crawler.ErrLockHeld)
	assert.Empty(t, st.jobs)
	assert.Empty(t, st.history)
}

func TestCrawlAll_ReleasesLock(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(src)
	lock := &fakeLocker{acquired: true}

	require.NoError(t, newOrchestrator(st, lock).CrawlAll(context.Background()))
	assert.True(t, lock.released)
}

func TestCrawlSource_HistoryInsertFailureAborts(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(src)
	st.failHistoryInsert = true

	h, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Empty(t, st.jobs)
}

func TestCrawlSource_JobPersistFailureContinuesBatch(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(src)
	st.failNextJobInsert = true

	h, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, model.CrawlCompleted, h.Status)
	assert.Equal(t, 2, h.JobsFound)
	assert.Equal(t, 1, h.JobsInserted)
	assert.Len(t, st.jobs, 1)
}

func TestCrawlSource_UnknownFormat(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", "https://unused.example.com")
	src.Format = model.SourceFormat("csv")
	st := newFakeStore(src)

	h, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.Error(t, err)
	require.NotNil(t, h)
	assert.Equal(t, model.CrawlFailed, h.Status)
	assert.Contains(t, h.ErrorMessage, "csv")
}

func TestCrawlSourceByName(t *testing.T) {
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, twoJobsTable))
	st := newFakeStore(src)

	h, err := newOrchestrator(st, nil).CrawlSourceByName(context.Background(), "awesome-jobs")
	require.NoError(t, err)
	assert.Equal(t, 2, h.JobsFound)

	_, err = newOrchestrator(st, nil).CrawlSourceByName(context.Background(), "nope")
	require.Error(t, err)
}

func TestCrawlSource_JobFieldsDerived(t *testing.T) {
	doc := `| Company | Role | Location | Salary | Apply |
|---|---|---|---|---|
| Acme | Senior Go Engineer | Berlin, Remote | $100k-$140k | [Apply](https://acme.example.com/1) |
`
	src := tableSource("src-1", "awesome-jobs", serveMarkdown(t, doc))
	st := newFakeStore(src)

	h, err := newOrchestrator(st, nil).CrawlSource(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 1, h.JobsInserted)

	var job *model.Job
	for _, j := range st.jobs {
		job = j
	}
	require.NotNil(t, job)
	assert.Equal(t, "awesome-jobs", job.SourceRepo)
	assert.Len(t, job.ExternalID, 16)
	assert.Equal(t, []string{"Berlin", "Remote"}, job.Locations)
	assert.Equal(t, model.RemoteRemote, job.RemoteType)
	assert.Equal(t, "senior", job.ExperienceLevel)
	require.NotNil(t, job.SalaryMin)
	assert.Equal(t, 100000, *job.SalaryMin)
	assert.Equal(t, "USD", job.SalaryCurrency)
	assert.Contains(t, job.Tags, "go")
	assert.True(t, job.IsActive)
	assert.Equal(t, st.companies["Acme"].ID, job.CompanyID)
}
