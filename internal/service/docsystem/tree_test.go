package docsystem

import (
	"testing"

	"dealdesk/internal/domain"
	models "dealdesk/internal/domain/models/docsystem"
	docsysSvc "dealdesk/internal/domain/services/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeService_LegalFolderScenario(t *testing.T) {
	env := newTestEnv(t)

	legal := env.folder(t, testDeal, "Legal", nil)
	nda := env.file(t, testDeal, "nda.pdf", legal)

	top, err := env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legal"}, names(top))

	inLegal, err := env.tree.ListChildren(env.ctx, testDeal, &legal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"nda.pdf"}, names(inLegal))

	crumbs, err := env.crumbs.Resolve(env.ctx, nda.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Crumb{{ID: legal.ID, Name: "Legal"}, {ID: nda.ID, Name: "nda.pdf"}}, crumbs)
}

func TestTreeService_ListChildrenOrdering(t *testing.T) {
	env := newTestEnv(t)

	env.file(t, testDeal, "old.pdf", nil)
	env.folder(t, testDeal, "Finance", nil)
	env.file(t, testDeal, "new.pdf", nil)
	env.folder(t, testDeal, "Legal", nil)

	children, err := env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legal", "Finance", "new.pdf", "old.pdf"}, names(children))

	// Another deal's nodes never show up
	env.folder(t, otherDeal, "Elsewhere", nil)
	children, err = env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Len(t, children, 4)
}

func TestTreeService_ListChildrenEmptyParentMeansRoot(t *testing.T) {
	env := newTestEnv(t)
	env.folder(t, testDeal, "Legal", nil)

	empty := ""
	children, err := env.tree.ListChildren(env.ctx, testDeal, &empty)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legal"}, names(children))
}

func TestTreeService_ListChildrenOfFileFails(t *testing.T) {
	env := newTestEnv(t)
	doc := env.file(t, testDeal, "doc.pdf", nil)

	_, err := env.tree.ListChildren(env.ctx, testDeal, &doc.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_SiblingNamesMayRepeat(t *testing.T) {
	env := newTestEnv(t)

	env.folder(t, testDeal, "Legal", nil)
	env.folder(t, testDeal, "Legal", nil)

	children, err := env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legal", "Legal"}, names(children))
}

func TestTreeService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	doc := env.file(t, testDeal, "doc.pdf", nil)
	foreign := env.folder(t, otherDeal, "Foreign", nil)
	missing := "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name    string
		req     *docsysSvc.CreateFolderRequest
		wantErr error
	}{
		{"empty name", &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "  ", CreatedBy: testUser}, domain.ErrValidation},
		{"slash in name", &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "a/b", CreatedBy: testUser}, domain.ErrValidation},
		{"file parent", &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "x", ParentID: &doc.ID, CreatedBy: testUser}, domain.ErrValidation},
		{"cross-deal parent", &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "x", ParentID: &foreign.ID, CreatedBy: testUser}, domain.ErrValidation},
		{"missing parent", &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "x", ParentID: &missing, CreatedBy: testUser}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tree.CreateFolder(env.ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTreeService_CreateFileTrimsName(t *testing.T) {
	env := newTestEnv(t)

	node := env.file(t, testDeal, "  report.pdf ", nil)
	assert.Equal(t, "report.pdf", node.Name)
	assert.Equal(t, models.NodeKindFile, node.Kind)
	require.NotNil(t, node.ByteSize)
	assert.Equal(t, int64(1024), *node.ByteSize)
}

func TestTreeService_CreateFileWithRequirement(t *testing.T) {
	env := newTestEnv(t)
	nda := env.requirement(t, "NDA", true)

	req := fileRequest(testDeal, "nda.pdf", nil)
	req.RequirementID = &nda.ID
	file, err := env.tree.CreateFile(env.ctx, req)
	require.NoError(t, err)

	got, err := env.tracker.GetRequirement(env.ctx, nda.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementUploaded, got.Status)
	require.NotNil(t, got.UploadedNodeID)
	assert.Equal(t, file.ID, *got.UploadedNodeID)
}

func TestTreeService_CreateFileRollsBackOnLinkFailure(t *testing.T) {
	env := newTestEnv(t)

	unknown := "no-such-requirement"
	req := fileRequest(testDeal, "nda.pdf", nil)
	req.RequirementID = &unknown
	_, err := env.tree.CreateFile(env.ctx, req)
	require.ErrorIs(t, err, domain.ErrNotFound)

	children, err := env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestTreeService_Rename(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)

	renamed, err := env.tree.Rename(env.ctx, legal.ID, "Legal & Compliance")
	require.NoError(t, err)
	assert.Equal(t, "Legal & Compliance", renamed.Name)
	assert.True(t, renamed.UpdatedAt.After(legal.UpdatedAt))

	_, err = env.tree.Rename(env.ctx, legal.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tree.Rename(env.ctx, legal.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tree.Rename(env.ctx, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTreeService_MoveOntoFileFails(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	nda := env.file(t, testDeal, "nda.pdf", legal)

	_, err := env.tree.Move(env.ctx, legal.ID, &nda.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_MoveIntoDescendantFails(t *testing.T) {
	env := newTestEnv(t)
	a := env.folder(t, testDeal, "A", nil)
	b := env.folder(t, testDeal, "B", a)
	c := env.folder(t, testDeal, "C", b)

	_, err := env.tree.Move(env.ctx, a.ID, &c.ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = env.tree.Move(env.ctx, a.ID, &a.ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	// The failed moves left the tree unchanged
	crumbs, err := env.crumbs.Resolve(env.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, crumbNames(crumbs))
}

func TestTreeService_MoveAcrossDealsFails(t *testing.T) {
	env := newTestEnv(t)
	a := env.folder(t, testDeal, "A", nil)
	foreign := env.folder(t, otherDeal, "Foreign", nil)

	_, err := env.tree.Move(env.ctx, a.ID, &foreign.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_Move(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	archive := env.folder(t, testDeal, "Archive", nil)
	nda := env.file(t, testDeal, "nda.pdf", legal)

	moved, err := env.tree.Move(env.ctx, nda.ID, &archive.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, archive.ID, *moved.ParentID)
	assert.True(t, moved.UpdatedAt.Equal(nda.UpdatedAt), "a move keeps updated_at")

	crumbs, err := env.crumbs.Resolve(env.ctx, nda.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "nda.pdf"}, crumbNames(crumbs))

	// Back to the top level
	moved, err = env.tree.Move(env.ctx, nda.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	top, err := env.tree.ListChildren(env.ctx, testDeal, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "Legal", "nda.pdf"}, names(top))
}

func TestTreeService_UpdateRenamesAndMovesTogether(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	archive := env.folder(t, testDeal, "Archive", nil)
	nda := env.file(t, testDeal, "nda.pdf", nil)

	name := "Renamed"
	_, err := env.tree.Update(env.ctx, legal.ID, &docsysSvc.UpdateNodeRequest{Name: &name, Move: true, ParentID: &nda.ID})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := env.tree.GetNode(env.ctx, legal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Legal", got.Name)
	assert.Nil(t, got.ParentID)
	assert.True(t, got.UpdatedAt.Equal(legal.UpdatedAt))

	updated, err := env.tree.Update(env.ctx, legal.ID, &docsysSvc.UpdateNodeRequest{Name: &name, Move: true, ParentID: &archive.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, archive.ID, *updated.ParentID)
	assert.True(t, updated.UpdatedAt.After(legal.UpdatedAt))

	_, err = env.tree.Update(env.ctx, legal.ID, &docsysSvc.UpdateNodeRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_CreateBeyondMaxDepthFails(t *testing.T) {
	env := newTestEnvWithDepth(t, 3)
	a := env.folder(t, testDeal, "A", nil)
	b := env.folder(t, testDeal, "B", a)
	c := env.folder(t, testDeal, "C", b)

	_, err := env.tree.CreateFolder(env.ctx, &docsysSvc.CreateFolderRequest{DealID: testDeal, Name: "D", ParentID: &c.ID, CreatedBy: testUser})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tree.CreateFile(env.ctx, fileRequest(testDeal, "d.pdf", c))
	assert.ErrorIs(t, err, domain.ErrValidation)

	// The deepest valid node resolves and the chain still cascades away
	leaf := env.file(t, testDeal, "c.pdf", b)
	crumbs, err := env.crumbs.Resolve(env.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, crumbNames(crumbs))

	require.NoError(t, env.tree.Delete(env.ctx, a.ID, true))
	_, err = env.tree.GetNode(env.ctx, leaf.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTreeService_MoveBeyondMaxDepthFails(t *testing.T) {
	env := newTestEnvWithDepth(t, 3)
	a := env.folder(t, testDeal, "A", nil)
	b := env.folder(t, testDeal, "B", a)
	x := env.folder(t, testDeal, "X", nil)
	env.file(t, testDeal, "x.pdf", x)

	// X plus its file needs two levels; only one is left below B
	_, err := env.tree.Move(env.ctx, x.ID, &b.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// A single node fits
	y := env.folder(t, testDeal, "Y", nil)
	moved, err := env.tree.Move(env.ctx, y.ID, &b.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, b.ID, *moved.ParentID)

	// X fits one level higher
	_, err = env.tree.Move(env.ctx, x.ID, &a.ID)
	require.NoError(t, err)
}

func TestTreeService_ReplaceContent(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	nda := env.file(t, testDeal, "nda.pdf", legal)

	updated, err := env.tree.ReplaceContent(env.ctx, nda.ID, &docsysSvc.ReplaceContentRequest{
		StoragePath: "uploads/v2/nda.pdf",
		ByteSize:    2048,
		MediaType:   "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/v2/nda.pdf", *updated.StoragePath)
	assert.Equal(t, int64(2048), *updated.ByteSize)

	_, err = env.tree.ReplaceContent(env.ctx, legal.ID, &docsysSvc.ReplaceContentRequest{
		StoragePath: "x", ByteSize: 1, MediaType: "text/plain",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_DeleteNonEmptyFolder(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	env.file(t, testDeal, "nda.pdf", legal)

	err := env.tree.Delete(env.ctx, legal.ID, false)
	require.ErrorIs(t, err, domain.ErrNotEmpty)

	var notEmpty *domain.NotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	assert.Equal(t, 1, notEmpty.ChildCount)

	_, err = env.tree.GetNode(env.ctx, legal.ID)
	assert.NoError(t, err)
}

func TestTreeService_DeleteEmptyFolder(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)

	require.NoError(t, env.tree.Delete(env.ctx, legal.ID, false))

	_, err := env.tree.GetNode(env.ctx, legal.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTreeService_CascadeDeleteUnlinksRequirements(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	contracts := env.folder(t, testDeal, "Contracts", legal)
	nda := env.file(t, testDeal, "nda.pdf", contracts)
	keep := env.folder(t, testDeal, "Keep", nil)

	ndaReq := env.requirement(t, "NDA", false)
	_, err := env.tracker.LinkUpload(env.ctx, ndaReq.ID, nda.ID)
	require.NoError(t, err)

	require.NoError(t, env.tree.Delete(env.ctx, legal.ID, true))

	for _, id := range []string{legal.ID, contracts.ID, nda.ID} {
		_, err := env.tree.GetNode(env.ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
	_, err = env.tree.GetNode(env.ctx, keep.ID)
	assert.NoError(t, err)

	got, err := env.tracker.GetRequirement(env.ctx, ndaReq.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UploadedNodeID)
	assert.Equal(t, models.RequirementRecommended, got.Status)
}

func TestTreeService_DeleteMissingNode(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.tree.Delete(env.ctx, "missing", true), domain.ErrNotFound)
}

func TestTreeService_GetTree(t *testing.T) {
	env := newTestEnv(t)
	legal := env.folder(t, testDeal, "Legal", nil)
	contracts := env.folder(t, testDeal, "Contracts", legal)
	env.file(t, testDeal, "nda.pdf", legal)
	env.file(t, testDeal, "msa.pdf", contracts)
	env.file(t, testDeal, "teaser.pdf", nil)
	env.folder(t, testDeal, "Finance", nil)
	env.folder(t, otherDeal, "Other", nil)

	tree, err := env.tree.GetTree(env.ctx, testDeal)
	require.NoError(t, err)

	assert.Equal(t, testDeal, tree.DealID)
	require.Len(t, tree.Folders, 2)
	assert.Equal(t, "Finance", tree.Folders[0].Name)
	assert.Equal(t, "Legal", tree.Folders[1].Name)
	require.Len(t, tree.Files, 1)
	assert.Equal(t, "teaser.pdf", tree.Files[0].Name)

	legalNode := tree.Folders[1]
	require.Len(t, legalNode.Folders, 1)
	assert.Equal(t, "Contracts", legalNode.Folders[0].Name)
	require.Len(t, legalNode.Files, 1)
	assert.Equal(t, "nda.pdf", legalNode.Files[0].Name)
	assert.Equal(t, int64(1024), legalNode.Files[0].ByteSize)

	require.Len(t, legalNode.Folders[0].Files, 1)
	assert.Equal(t, "msa.pdf", legalNode.Folders[0].Files[0].Name)
}

func TestTreeService_GetTreeEmptyDeal(t *testing.T) {
	env := newTestEnv(t)

	tree, err := env.tree.GetTree(env.ctx, testDeal)
	require.NoError(t, err)
	assert.Empty(t, tree.Folders)
	assert.Empty(t, tree.Files)
}

// Random moves never produce a node that is its own ancestor
func TestTreeService_MovesKeepTreeAcyclic(t *testing.T) {
	env := newTestEnv(t)

	var folders []*models.Node
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		var parent *models.Node
		if len(folders) > 0 {
			parent = folders[len(folders)/2]
		}
		folders = append(folders, env.folder(t, testDeal, name, parent))
	}

	for i := range folders {
		for j := range folders {
			_, err := env.tree.Move(env.ctx, folders[i].ID, &folders[j].ID)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrCycle)
			}
		}
	}

	for _, f := range folders {
		crumbs, err := env.crumbs.Resolve(env.ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, f.ID, crumbs[len(crumbs)-1].ID)
	}
}
