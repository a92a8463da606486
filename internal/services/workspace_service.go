package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"collab-service/internal/models"
	"collab-service/internal/repositories/postgres"
)

var ErrNotWorkspaceOwner = errors.New("only the workspace owner may do this")

// teammateCacheTTL matches the original behavior of caching workspace
// lookups for an hour.
const teammateCacheTTL = time.Hour

type WorkspaceService struct {
	workspaceRepo *postgres.WorkspaceRepository
	userRepo      *postgres.UserRepository
	presence      *PresenceService
}

func NewWorkspaceService(
	workspaceRepo *postgres.WorkspaceRepository,
	userRepo *postgres.UserRepository,
	presence *PresenceService,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		presence:      presence,
	}
}

func (s *WorkspaceService) CreateWorkspace(name string, ownerID uint) (*models.WorkspaceResponse, error) {
	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		return nil, err
	}

	workspace := &models.Workspace{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.workspaceRepo.Create(workspace, owner); err != nil {
		return nil, err
	}

	resp := workspace.ToResponse()
	return &resp, nil
}

func (s *WorkspaceService) GetUserWorkspaces(ctx context.Context, userID uint) ([]models.WorkspaceResponse, error) {
	cacheKey := fmt.Sprintf("user:%d:workspaces", userID)

	var cached []models.WorkspaceResponse
	if err := s.presence.CacheGet(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	workspaces, err := s.workspaceRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.WorkspaceResponse, 0, len(workspaces))
	for i := range workspaces {
		responses = append(responses, workspaces[i].ToResponse())
	}

	if len(responses) > 0 {
		if err := s.presence.CacheSet(ctx, cacheKey, responses, teammateCacheTTL); err != nil {
			slog.Warn("Failed to cache user workspaces", "userID", userID, "error", err)
		}
	}
	return responses, nil
}

// GetTeammates returns the member list of a workspace, cached for an hour.
func (s *WorkspaceService) GetTeammates(ctx context.Context, workspaceID uint) ([]models.TeammateResponse, error) {
	cacheKey := fmt.Sprintf("workspace:%d:teammates", workspaceID)

	var cached []models.TeammateResponse
	if err := s.presence.CacheGet(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		return nil, err
	}

	teammates := make([]models.TeammateResponse, 0, len(workspace.Members))
	for _, member := range workspace.Members {
		teammates = append(teammates, models.TeammateResponse{
			ID:       member.ID,
			Username: member.Username,
		})
	}

	if len(teammates) > 0 {
		if err := s.presence.CacheSet(ctx, cacheKey, teammates, teammateCacheTTL); err != nil {
			slog.Warn("Failed to cache workspace teammates", "workspaceID", workspaceID, "error", err)
		}
	}
	return teammates, nil
}

func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, workspaceID, userID uint, name string) error {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		return err
	}
	if workspace.OwnerID != userID {
		return ErrNotWorkspaceOwner
	}

	if err := s.workspaceRepo.Update(workspaceID, name); err != nil {
		return err
	}

	// Cached member lists embed the old room key; drop them.
	if err := s.presence.CacheDelete(ctx, fmt.Sprintf("workspace:%d:teammates", workspaceID)); err != nil {
		slog.Warn("Failed to invalidate teammate cache", "workspaceID", workspaceID, "error", err)
	}
	return nil
}

func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if err := s.workspaceRepo.AddMember(workspaceID, user); err != nil {
		return err
	}

	if err := s.presence.CacheDelete(ctx, fmt.Sprintf("workspace:%d:teammates", workspaceID)); err != nil {
		slog.Warn("Failed to invalidate teammate cache", "workspaceID", workspaceID, "error", err)
	}
	return nil
}
