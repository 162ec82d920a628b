package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"orgtasks/internal/core"
	"orgtasks/internal/shared"
	"orgtasks/internal/types"
)

// ResolveUserID resolves exactly one User record id. Without filters it
// derives the id from the caller's own authenticated identity. With
// filters it re-describes the User schema, builds a conjunctive query
// and requires exactly one match: zero or multiple matches is an input
// error, never silently defaulted.
func (s Service) ResolveUserID(ctx context.Context, filters []types.FieldFilter) (string, error) {
	if len(filters) == 0 {
		return s.resolveDefaultUserID(ctx)
	}

	fields, err := s.Records.Describe(ctx, "User")
	if err != nil {
		return "", err
	}
	query, err := core.BuildUserQuery(ctx, fields, filters)
	if err != nil {
		return "", err
	}

	log.Ctx(ctx).Info().Str("query", query).Msg("querying user")
	rows, err := s.Records.Query(ctx, query)
	if err != nil {
		var platformErr *types.PlatformError
		if errors.As(err, &platformErr) {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(platformErr.Errors.Join()).
				WithCause(err)
		}
		return "", err
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["Id"].(string); ok {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no users found")
	}
	if len(userIDs) > 1 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("more than one user found (%d): %s", len(userIDs), strings.Join(userIDs, ", ")))
	}

	log.Ctx(ctx).Info().Str("user", userIDs[0]).Msg("resolved user for profile photo")
	return userIDs[0], nil
}

func (s Service) resolveDefaultUserID(ctx context.Context) (string, error) {
	response, err := s.Records.Restful(ctx, "", http.MethodGet, nil)
	if err != nil {
		return "", err
	}
	identity, _ := response["identity"].(string)
	if identity == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("identity endpoint returned no identity reference")
	}
	userID := shared.RecordIDFromIdentity(identity)
	log.Ctx(ctx).Info().Str("user", userID).Msg("resolved default user for profile photo")
	return userID, nil
}

// UploadPhoto uploads the file as a content version and links the
// resulting content document to the user as their profile photo. When
// the platform rejects the link, the orphaned content document is
// deleted before the failure is surfaced, so either the photo is live
// or nothing is left behind.
func (s Service) UploadPhoto(ctx context.Context, req UploadPhotoRequest) (UploadPhotoResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return UploadPhotoResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("user id is required")
	}

	documentID, err := s.insertContentDocument(ctx, req.PhotoPath)
	if err != nil {
		return UploadPhotoResult{}, err
	}

	endpoint := fmt.Sprintf("connect/user-profiles/%s/photo", req.UserID)
	if _, err := s.Records.Restful(ctx, endpoint, http.MethodPost, map[string]any{"fileId": documentID}); err != nil {
		var platformErr *types.PlatformError
		if !errors.As(err, &platformErr) {
			return UploadPhotoResult{}, err
		}
		log.Ctx(ctx).Error().Str("content_document", documentID).
			Msg("platform rejected the profile photo link, deleting uploaded document")
		if deleteErr := s.Records.Delete(ctx, "ContentDocument", documentID); deleteErr != nil {
			return UploadPhotoResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to delete ContentDocument %s after rejected photo link: %s (link rejected: %s)", documentID, deleteErr, platformErr.Errors.Join())).
				WithCause(deleteErr)
		}
		return UploadPhotoResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(platformErr.Errors.Join()).
			WithCause(err)
	}

	log.Ctx(ctx).Info().Str("user", req.UserID).Str("content_document", documentID).
		Msg("profile photo set")
	return UploadPhotoResult{UserID: req.UserID, ContentDocumentID: documentID}, nil
}

// insertContentDocument creates the ContentVersion for the photo and
// returns the content document id it belongs to.
func (s Service) insertContentDocument(ctx context.Context, photoPath string) (string, error) {
	path := strings.TrimSpace(photoPath)
	if path == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("photo path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no photo found at path: %s", path)).
			WithCause(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read photo file").
			WithCause(err)
	}

	log.Ctx(ctx).Info().Str("photo", path).Msg("setting user photo")
	result, err := s.Records.Create(ctx, "ContentVersion", map[string]any{
		"PathOnClient": filepath.Base(path),
		"Title":        shared.FileTitle(path),
		"VersionData":  base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create photo ContentVersion: %s", result.Errors.Join()))
	}

	rows, err := s.Records.Query(ctx, fmt.Sprintf("SELECT Id, ContentDocumentId FROM ContentVersion WHERE Id = '%s'", result.ID))
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("created ContentVersion %s has no queryable content document", result.ID))
	}
	documentID, _ := rows[0]["ContentDocumentId"].(string)
	if documentID == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("ContentVersion %s is missing its ContentDocumentId", result.ID))
	}

	log.Ctx(ctx).Info().Str("content_document", documentID).Msg("uploaded profile photo document")
	return documentID, nil
}
