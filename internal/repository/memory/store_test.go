package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolder(dealID, name string, parentID *string, updated time.Time) *docsystem.Node {
	return &docsystem.Node{
		DealID:     dealID,
		ParentID:   parentID,
		Name:       name,
		Kind:       docsystem.NodeKindFolder,
		UploadedBy: "u1",
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}
}

func TestExecTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	nodes := NewNodeRepository(store)
	txManager := NewTransactionManager(store)

	boom := errors.New("boom")
	err := txManager.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, nodes.Create(ctx, newFolder("d1", "Legal", nil, time.Now())))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := nodes.ListByDeal(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExecTx_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	nodes := NewNodeRepository(store)
	txManager := NewTransactionManager(store)

	assert.Panics(t, func() {
		_ = txManager.ExecTx(ctx, func(ctx context.Context) error {
			_ = nodes.Create(ctx, newFolder("d1", "Legal", nil, time.Now()))
			panic("boom")
		})
	})

	// The store lock must have been released
	all, err := nodes.ListByDeal(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExecTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	nodes := NewNodeRepository(store)
	txManager := NewTransactionManager(store)

	err := txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := txManager.ExecTx(ctx, func(ctx context.Context) error {
			return nodes.Create(ctx, newFolder("d1", "Inner", nil, time.Now()))
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	all, err := nodes.ListByDeal(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, all, "inner work is undone with the outer transaction")
}

func TestNodeRepository_DeleteRestrictAndSetNull(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	nodes := NewNodeRepository(store)
	reqs := NewRequirementRepository(store)

	now := time.Now()
	parent := newFolder("d1", "Legal", nil, now)
	require.NoError(t, nodes.Create(ctx, parent))

	file := newFolder("d1", "nda.pdf", &parent.ID, now)
	file.Kind = docsystem.NodeKindFile
	require.NoError(t, nodes.Create(ctx, file))

	req := &docsystem.Requirement{DealID: "d1", Category: "Legal", Name: "NDA", IsRequired: true, UploadedNodeID: &file.ID}
	require.NoError(t, reqs.Create(ctx, req))

	var notEmpty *domain.NotEmptyError
	err := nodes.Delete(ctx, parent.ID)
	require.ErrorAs(t, err, &notEmpty)
	assert.Equal(t, 1, notEmpty.ChildCount)

	require.NoError(t, nodes.Delete(ctx, file.ID))
	got, err := reqs.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UploadedNodeID)

	assert.ErrorIs(t, nodes.Delete(ctx, file.ID), domain.ErrNotFound)
}

func TestNodeRepository_ListChildrenOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	nodes := NewNodeRepository(store)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldFolder := newFolder("d1", "Old", nil, base)
	newFolderNode := newFolder("d1", "New", nil, base.Add(time.Hour))
	recentFile := newFolder("d1", "recent.pdf", nil, base.Add(2*time.Hour))
	recentFile.Kind = docsystem.NodeKindFile
	other := newFolder("d2", "Elsewhere", nil, base)

	for _, n := range []*docsystem.Node{oldFolder, recentFile, newFolderNode, other} {
		require.NoError(t, nodes.Create(ctx, n))
	}

	children, err := nodes.ListChildren(ctx, "d1", nil)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "New", children[0].Name)
	assert.Equal(t, "Old", children[1].Name)
	assert.Equal(t, "recent.pdf", children[2].Name)
}

func TestRequirementRepository_UniqueNamePerCategory(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	reqs := NewRequirementRepository(store)

	nda := &docsystem.Requirement{DealID: "d1", Category: "Legal", Name: "NDA", IsRequired: true}
	require.NoError(t, reqs.Create(ctx, nda))

	dup := &docsystem.Requirement{DealID: "d1", Category: "Legal", Name: "NDA"}
	assert.ErrorIs(t, reqs.Create(ctx, dup), domain.ErrConflict)

	cim := &docsystem.Requirement{DealID: "d1", Category: "Legal", Name: "CIM"}
	require.NoError(t, reqs.Create(ctx, cim))
	require.NoError(t, reqs.Create(ctx, &docsystem.Requirement{DealID: "d2", Category: "Legal", Name: "NDA"}))

	// Renaming onto an existing name is rejected; saving unchanged is not
	cim.Name = "NDA"
	assert.ErrorIs(t, reqs.Update(ctx, cim), domain.ErrConflict)
	assert.NoError(t, reqs.Update(ctx, nda))

	exists, err := reqs.Exists(ctx, "d1", "Legal", "CIM")
	require.NoError(t, err)
	assert.True(t, exists)
}
