package docsystem

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	models "dealdesk/internal/domain/models/docsystem"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
	"dealdesk/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

const (
	testDeal  = "deal-1"
	otherDeal = "deal-2"
	testUser  = "user-1"
)

// fakeClock returns strictly increasing timestamps
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	ctx      context.Context
	nodes    docsysRepo.NodeRepository
	reqs     docsysRepo.RequirementRepository
	tree     docsysSvc.TreeService
	crumbs   docsysSvc.BreadcrumbResolver
	tracker  docsysSvc.RequirementTracker
	clock    *fakeClock
	maxDepth int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDepth(t, 0)
}

func newTestEnvWithDepth(t *testing.T, maxDepth int) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	nodes := memory.NewNodeRepository(store)
	reqs := memory.NewRequirementRepository(store)
	txManager := memory.NewTransactionManager(store)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	tracker := NewRequirementTracker(reqs, nodes, txManager, nil, logger)
	tracker.(*requirementTracker).now = clock.Now

	tree := NewTreeService(nodes, tracker, txManager, maxDepth, logger)
	tree.(*treeService).now = clock.Now

	return &testEnv{
		ctx:      context.Background(),
		nodes:    nodes,
		reqs:     reqs,
		tree:     tree,
		crumbs:   NewBreadcrumbResolver(nodes, maxDepth, logger),
		tracker:  tracker,
		clock:    clock,
		maxDepth: maxDepth,
	}
}

func (e *testEnv) folder(t *testing.T, dealID, name string, parent *models.Node) *models.Node {
	t.Helper()
	req := &docsysSvc.CreateFolderRequest{DealID: dealID, Name: name, CreatedBy: testUser}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	node, err := e.tree.CreateFolder(e.ctx, req)
	require.NoError(t, err)
	return node
}

func (e *testEnv) file(t *testing.T, dealID, name string, parent *models.Node) *models.Node {
	t.Helper()
	node, err := e.tree.CreateFile(e.ctx, fileRequest(dealID, name, parent))
	require.NoError(t, err)
	return node
}

func (e *testEnv) requirement(t *testing.T, name string, required bool) *models.Requirement {
	t.Helper()
	req, err := e.tracker.CreateRequirement(e.ctx, &docsysSvc.CreateRequirementRequest{
		DealID:     testDeal,
		Name:       name,
		Category:   "Legal",
		IsRequired: required,
	})
	require.NoError(t, err)
	return req
}

func fileRequest(dealID, name string, parent *models.Node) *docsysSvc.CreateFileRequest {
	req := &docsysSvc.CreateFileRequest{
		DealID:      dealID,
		Name:        name,
		StoragePath: "uploads/" + dealID + "/" + name,
		ByteSize:    1024,
		MediaType:   "application/pdf",
		CreatedBy:   testUser,
	}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	return req
}

func names(nodes []models.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func crumbNames(crumbs []models.Crumb) []string {
	out := make([]string, len(crumbs))
	for i, c := range crumbs {
		out[i] = c.Name
	}
	return out
}
