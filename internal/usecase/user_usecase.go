package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"time"

	"golang.org/x/image/draw"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

// avatarMaxDim bounds the stored avatar; anything larger gets resampled.
const avatarMaxDim = 256

type userUsecase struct {
	profiles domain.ProfileRepository
}

func NewUserUsecase(profiles domain.ProfileRepository) domain.UserUsecase {
	return &userUsecase{profiles: profiles}
}

func (u *userUsecase) List(ctx context.Context, filter domain.ProfileFilter, page, pageSize int) ([]domain.Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.profiles.Fetch(ctx, filter, pageSize, (page-1)*pageSize)
}

func (u *userUsecase) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := u.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("user not found")
	}
	return p, nil
}

func (u *userUsecase) Create(ctx context.Context, p *domain.Profile) error {
	if !p.Role.Valid() {
		return apperror.BadRequest(fmt.Sprintf("unknown role %q", p.Role))
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return u.profiles.Create(ctx, p)
}

func (u *userUsecase) Update(ctx context.Context, p *domain.Profile) error {
	existing, err := u.profiles.GetByID(ctx, p.ID)
	if err != nil {
		return apperror.NotFound("user not found")
	}
	// Role and email changes go through dedicated flows, not profile edits.
	p.Role = existing.Role
	p.Email = existing.Email
	p.UpdatedAt = time.Now()
	return u.profiles.Update(ctx, p)
}

func (u *userUsecase) ChangeStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return apperror.BadRequest(fmt.Sprintf("unknown status %q", status))
	}
	if _, err := u.profiles.GetByID(ctx, id); err != nil {
		return apperror.NotFound("user not found")
	}
	return u.profiles.UpdateStatus(ctx, id, status)
}

// StoreAvatar decodes the uploaded image, resamples it down to avatarMaxDim
// on the longer edge and stores it as PNG. Returns the serving path.
func (u *userUsecase) StoreAvatar(ctx context.Context, id string, img []byte) (string, error) {
	if _, err := u.profiles.GetByID(ctx, id); err != nil {
		return "", apperror.NotFound("user not found")
	}

	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return "", apperror.BadRequest("unsupported image format")
	}

	normalized, err := encodeAvatar(src)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if err := u.profiles.SetAvatar(ctx, id, normalized); err != nil {
		return "", err
	}
	return fmt.Sprintf("/v1/users/%s/avatar", id), nil
}

func (u *userUsecase) LoadAvatar(ctx context.Context, id string) ([]byte, error) {
	data, err := u.profiles.GetAvatar(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("avatar not found")
	}
	return data, nil
}

func encodeAvatar(src image.Image) ([]byte, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > avatarMaxDim || h > avatarMaxDim {
		scale := float64(avatarMaxDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
