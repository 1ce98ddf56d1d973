package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dealdesk/internal/config"
	"dealdesk/internal/domain"
	models "dealdesk/internal/domain/models/docsystem"
	"dealdesk/internal/domain/repositories"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
)

// treeService implements the TreeService interface
type treeService struct {
	nodeRepo     docsysRepo.NodeRepository
	requirements docsysSvc.RequirementTracker
	txManager    repositories.TransactionManager
	maxDepth     int
	logger       *slog.Logger
	now          func() time.Time
}

// NewTreeService creates a new tree service. maxDepth bounds every parent
// chain walk; values <= 0 fall back to config.DefaultMaxTreeDepth.
func NewTreeService(
	nodeRepo docsysRepo.NodeRepository,
	requirements docsysSvc.RequirementTracker,
	txManager repositories.TransactionManager,
	maxDepth int,
	logger *slog.Logger,
) docsysSvc.TreeService {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxTreeDepth
	}
	return &treeService{
		nodeRepo:     nodeRepo,
		requirements: requirements,
		txManager:    txManager,
		maxDepth:     maxDepth,
		logger:       logger,
		now:          time.Now,
	}
}

// ListChildren lists the direct children of a folder, or the deal's top level when parentID is nil
func (s *treeService) ListChildren(ctx context.Context, dealID string, parentID *string) ([]models.Node, error) {
	parentID = normalizeID(parentID)

	if parentID != nil {
		if _, err := s.requireFolder(ctx, dealID, *parentID); err != nil {
			return nil, err
		}
	}

	children, err := s.nodeRepo.ListChildren(ctx, dealID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	return children, nil
}

// GetNode retrieves a single node
func (s *treeService) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	return s.nodeRepo.GetByID(ctx, nodeID)
}

// CreateFolder creates a folder under an existing folder of the same deal
func (s *treeService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.Node, error) {
	req.ParentID = normalizeID(req.ParentID)
	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}

	now := s.now()
	folder := &models.Node{
		DealID:     req.DealID,
		ParentID:   req.ParentID,
		Name:       req.Name,
		Kind:       models.NodeKindFolder,
		UploadedBy: req.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentID != nil {
			if err := s.checkCreateParent(ctx, req.DealID, *req.ParentID); err != nil {
				return err
			}
		}
		return s.nodeRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"deal_id", folder.DealID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// CreateFile records an uploaded file. When the request names a
// requirement, the link is made in the same transaction as the insert.
func (s *treeService) CreateFile(ctx context.Context, req *docsysSvc.CreateFileRequest) (*models.Node, error) {
	req.ParentID = normalizeID(req.ParentID)
	req.RequirementID = normalizeID(req.RequirementID)
	if err := validateCreateFile(req); err != nil {
		return nil, err
	}

	now := s.now()
	file := &models.Node{
		DealID:      req.DealID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Kind:        models.NodeKindFile,
		StoragePath: &req.StoragePath,
		ByteSize:    &req.ByteSize,
		MediaType:   &req.MediaType,
		UploadedBy:  req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentID != nil {
			if err := s.checkCreateParent(ctx, req.DealID, *req.ParentID); err != nil {
				return err
			}
		}
		if err := s.nodeRepo.Create(ctx, file); err != nil {
			return err
		}
		if req.RequirementID != nil {
			if _, err := s.requirements.LinkUpload(ctx, *req.RequirementID, file.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"name", file.Name,
		"deal_id", file.DealID,
		"parent_id", file.ParentID,
		"byte_size", req.ByteSize,
		"requirement_id", req.RequirementID,
	)

	return file, nil
}

// Rename changes a node's display name
func (s *treeService) Rename(ctx context.Context, nodeID, newName string) (*models.Node, error) {
	return s.Update(ctx, nodeID, &docsysSvc.UpdateNodeRequest{Name: &newName})
}

// Move re-parents a node
func (s *treeService) Move(ctx context.Context, nodeID string, newParentID *string) (*models.Node, error) {
	return s.Update(ctx, nodeID, &docsysSvc.UpdateNodeRequest{Move: true, ParentID: newParentID})
}

// Update renames and/or moves a node in one transaction. A move takes the
// deal lock before the cycle check so the parent chain cannot change
// underneath it. Only a rename refreshes updated_at.
func (s *treeService) Update(ctx context.Context, nodeID string, req *docsysSvc.UpdateNodeRequest) (*models.Node, error) {
	if req.Name == nil && !req.Move {
		return nil, &domain.ValidationError{Message: "nothing to update: set a name and/or a parent"}
	}

	var newName string
	if req.Name != nil {
		newName = strings.TrimSpace(*req.Name)
		if err := validateNodeName(newName); err != nil {
			return nil, err
		}
	}
	newParentID := normalizeID(req.ParentID)

	current, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	var node *models.Node
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.Move {
			if err := s.nodeRepo.LockDeal(ctx, current.DealID); err != nil {
				return err
			}
		}

		var err error
		node, err = s.nodeRepo.GetForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			node.Name = newName
			node.UpdatedAt = s.now()
		}

		if req.Move {
			if newParentID != nil {
				if err := s.checkMoveTarget(ctx, node, *newParentID); err != nil {
					return err
				}
			}
			node.ParentID = newParentID
		}

		return s.nodeRepo.Update(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node updated",
		"id", node.ID,
		"name", node.Name,
		"parent_id", node.ParentID,
		"renamed", req.Name != nil,
		"moved", req.Move,
	)
	return node, nil
}

// checkMoveTarget checks that newParentID can take node: a folder of the
// same deal, not node or one of its descendants, with room for node's
// subtree below it
func (s *treeService) checkMoveTarget(ctx context.Context, node *models.Node, newParentID string) error {
	if _, err := s.requireFolder(ctx, node.DealID, newParentID); err != nil {
		return err
	}

	level, err := s.parentLevel(ctx, node.ID, newParentID)
	if err != nil {
		return err
	}

	room := s.maxDepth - level
	height, err := s.subtreeHeight(ctx, node, room)
	if err != nil {
		return err
	}
	if height > room {
		return s.depthError(newParentID)
	}
	return nil
}

// ReplaceContent points a file node at newly uploaded bytes
func (s *treeService) ReplaceContent(ctx context.Context, nodeID string, req *docsysSvc.ReplaceContentRequest) (*models.Node, error) {
	if err := validateReplaceContent(req); err != nil {
		return nil, err
	}

	var node *models.Node
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		node, err = s.nodeRepo.GetForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}
		if !node.IsFile() {
			return &domain.ValidationError{Message: fmt.Sprintf("node %s is a folder and has no content", nodeID)}
		}

		storagePath, byteSize, mediaType := req.StoragePath, req.ByteSize, req.MediaType
		node.StoragePath = &storagePath
		node.ByteSize = &byteSize
		node.MediaType = &mediaType
		node.UpdatedAt = s.now()
		return s.nodeRepo.Update(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file content replaced", "id", node.ID, "byte_size", req.ByteSize)
	return node, nil
}

// Delete removes a node. Folders with children need cascade; every file
// removed has its requirement links cleared in the same transaction.
func (s *treeService) Delete(ctx context.Context, nodeID string, cascade bool) error {
	current, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}

	deleted := 0
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.nodeRepo.LockDeal(ctx, current.DealID); err != nil {
			return err
		}

		node, err := s.nodeRepo.GetForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}

		if node.IsFolder() && !cascade {
			count, err := s.nodeRepo.CountChildren(ctx, node.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return &domain.NotEmptyError{
					Message:    fmt.Sprintf("folder %q is not empty", node.Name),
					NodeID:     node.ID,
					ChildCount: count,
				}
			}
		}

		deleted, err = s.deleteSubtree(ctx, node, 0)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("node deleted",
		"id", nodeID,
		"name", current.Name,
		"deal_id", current.DealID,
		"cascade", cascade,
		"deleted_count", deleted,
	)

	return nil
}

// deleteSubtree deletes node and its descendants children-first and
// returns how many nodes were removed
func (s *treeService) deleteSubtree(ctx context.Context, node *models.Node, depth int) (int, error) {
	if depth >= s.maxDepth {
		return 0, &domain.CycleError{
			Message: fmt.Sprintf("subtree below node %s exceeds depth %d", node.ID, s.maxDepth),
			NodeID:  node.ID,
		}
	}

	deleted := 0
	if node.IsFolder() {
		children, err := s.nodeRepo.ListChildren(ctx, node.DealID, &node.ID)
		if err != nil {
			return 0, fmt.Errorf("list children of %s: %w", node.ID, err)
		}
		for i := range children {
			n, err := s.deleteSubtree(ctx, &children[i], depth+1)
			if err != nil {
				return 0, err
			}
			deleted += n
		}
	} else {
		unlinked, err := s.requirements.UnlinkNode(ctx, node.ID)
		if err != nil {
			return 0, fmt.Errorf("unlink requirements of %s: %w", node.ID, err)
		}
		if len(unlinked) > 0 {
			s.logger.Debug("requirements unlinked", "node_id", node.ID, "count", len(unlinked))
		}
	}

	if err := s.nodeRepo.Delete(ctx, node.ID); err != nil {
		return 0, err
	}
	s.logger.Debug("deleted node", "id", node.ID, "name", node.Name, "kind", node.Kind)

	return deleted + 1, nil
}

// GetTree builds the nested folder/file tree for a deal from one flat listing
func (s *treeService) GetTree(ctx context.Context, dealID string) (*models.TreeNode, error) {
	nodes, err := s.nodeRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	// Sorting the flat list first leaves every child slice in listing order
	models.SortNodes(nodes)

	folderMap := make(map[string]*models.FolderTreeNode)
	for _, node := range nodes {
		if node.IsFolder() {
			folderMap[node.ID] = &models.FolderTreeNode{
				ID:        node.ID,
				Name:      node.Name,
				ParentID:  node.ParentID,
				UpdatedAt: node.UpdatedAt,
				Folders:   []*models.FolderTreeNode{},
				Files:     []models.FileTreeNode{},
			}
		}
	}

	tree := &models.TreeNode{
		DealID:  dealID,
		Folders: []*models.FolderTreeNode{},
		Files:   []models.FileTreeNode{},
	}

	orphans := 0
	for _, node := range nodes {
		var parent *models.FolderTreeNode
		if node.ParentID != nil {
			var ok bool
			if parent, ok = folderMap[*node.ParentID]; !ok {
				orphans++
				continue
			}
		}

		if node.IsFolder() {
			if parent == nil {
				tree.Folders = append(tree.Folders, folderMap[node.ID])
			} else {
				parent.Folders = append(parent.Folders, folderMap[node.ID])
			}
			continue
		}

		file := fileTreeNode(node)
		if parent == nil {
			tree.Files = append(tree.Files, file)
		} else {
			parent.Files = append(parent.Files, file)
		}
	}

	if orphans > 0 {
		s.logger.Warn("nodes with unknown parent left out of tree", "deal_id", dealID, "count", orphans)
	}

	s.logger.Debug("deal tree built", "deal_id", dealID, "node_count", len(nodes))

	return tree, nil
}

// requireFolder loads id and checks it is a folder of dealID
func (s *treeService) requireFolder(ctx context.Context, dealID, id string) (*models.Node, error) {
	parent, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if parent.DealID != dealID {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("parent %s belongs to another deal", id)}
	}
	if !parent.IsFolder() {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("parent %s is a file, not a folder", id)}
	}
	return parent, nil
}

// checkCreateParent checks that parentID is a folder of dealID with room
// for one more level below it. The deal lock keeps a concurrent move from
// deepening the chain after the check.
func (s *treeService) checkCreateParent(ctx context.Context, dealID, parentID string) error {
	if err := s.nodeRepo.LockDeal(ctx, dealID); err != nil {
		return err
	}
	if _, err := s.requireFolder(ctx, dealID, parentID); err != nil {
		return err
	}

	level, err := s.parentLevel(ctx, "", parentID)
	if err != nil {
		return err
	}
	if level >= s.maxDepth {
		return s.depthError(parentID)
	}
	return nil
}

// parentLevel walks from parentID to the root and returns parentID's level
// (1 for a top-level folder). It fails with a cycle error if movingID is on
// the way or the chain is longer than maxDepth.
func (s *treeService) parentLevel(ctx context.Context, movingID, parentID string) (int, error) {
	currentID := parentID
	for level := 1; ; level++ {
		if currentID == movingID {
			return 0, &domain.CycleError{
				Message: fmt.Sprintf("cannot move node %s under itself or one of its descendants", movingID),
				NodeID:  movingID,
			}
		}
		if level > s.maxDepth {
			return 0, &domain.CycleError{
				Message: fmt.Sprintf("parent chain above %s exceeds depth %d", parentID, s.maxDepth),
				NodeID:  parentID,
			}
		}

		current, err := s.nodeRepo.GetByID(ctx, currentID)
		if err != nil {
			return 0, err
		}
		if current.ParentID == nil {
			return level, nil
		}
		currentID = *current.ParentID
	}
}

// subtreeHeight counts the levels from node down to its deepest descendant.
// It stops descending once the count passes limit.
func (s *treeService) subtreeHeight(ctx context.Context, node *models.Node, limit int) (int, error) {
	if !node.IsFolder() || limit <= 0 {
		return 1, nil
	}

	children, err := s.nodeRepo.ListChildren(ctx, node.DealID, &node.ID)
	if err != nil {
		return 0, fmt.Errorf("list children of %s: %w", node.ID, err)
	}

	height := 1
	for i := range children {
		h, err := s.subtreeHeight(ctx, &children[i], limit-1)
		if err != nil {
			return 0, err
		}
		height = max(height, h+1)
		if height > limit {
			break
		}
	}
	return height, nil
}

func (s *treeService) depthError(parentID string) error {
	return &domain.ValidationError{
		Message: fmt.Sprintf("folder %s has no room below it: trees are limited to %d levels", parentID, s.maxDepth),
	}
}

func fileTreeNode(node models.Node) models.FileTreeNode {
	file := models.FileTreeNode{
		ID:        node.ID,
		Name:      node.Name,
		ParentID:  node.ParentID,
		UpdatedAt: node.UpdatedAt,
	}
	if node.ByteSize != nil {
		file.ByteSize = *node.ByteSize
	}
	if node.MediaType != nil {
		file.MediaType = *node.MediaType
	}
	return file
}

// normalizeID treats an empty string like an absent id
func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
