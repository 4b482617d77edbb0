package dto

import (
	"time"

	"estate/internal/domains/post/model"
	"estate/shared"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	BuildingID     string    `json:"building_id"     validate:"required,uuid"`
	Description    string    `json:"description"     validate:"required,max=2000"`
	PriorityMethod int       `json:"priority_method" validate:"omitempty,gte=0"`
	SalesOpenAt    time.Time `json:"sales_open_at"   validate:"required"`
	SalesCloseAt   time.Time `json:"sales_close_at"  validate:"required,gtfield=SalesOpenAt"`
}

func (r *CreatePostRequest) ToModel(username, agencyID, imageURL string) model.Post {
	return model.Post{
		ID:             uuid.NewString(),
		BuildingID:     r.BuildingID,
		AgencyID:       agencyID,
		Description:    r.Description,
		PriorityMethod: r.PriorityMethod,
		SalesOpenAt:    r.SalesOpenAt,
		SalesCloseAt:   r.SalesCloseAt,
		Image:          imageURL,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

type UpdatePostRequest struct {
	Description    string    `db:"description"     json:"description"     validate:"omitempty,max=2000"`
	PriorityMethod int       `db:"priority_method" json:"priority_method" validate:"omitempty,gte=0"`
	SalesOpenAt    time.Time `db:"sales_open_at"   json:"sales_open_at"   validate:"omitempty"`
	SalesCloseAt   time.Time `db:"sales_close_at"  json:"sales_close_at"  validate:"omitempty"`
}

type PostResponse struct {
	ID             string `json:"id"`
	BuildingID     string `json:"building_id"`
	AgencyID       string `json:"agency_id"`
	Description    string `json:"description"`
	PriorityMethod int    `json:"priority_method"`
	SalesOpenAt    string `json:"sales_open_at"`
	SalesCloseAt   string `json:"sales_close_at"`
	Image          string `json:"image"`
	gDto.Metadata
}

func (r *PostResponse) FromModel(model model.Post) {
	r.ID = model.ID
	r.BuildingID = model.BuildingID
	r.AgencyID = model.AgencyID
	r.Description = model.Description
	r.PriorityMethod = model.PriorityMethod
	r.SalesOpenAt = timezone.Format(model.SalesOpenAt, constant.DateFormat)
	r.SalesCloseAt = timezone.Format(model.SalesCloseAt, constant.DateFormat)
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetPostsResponse struct {
	Posts     []PostResponse `json:"posts"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetPostsResponse) FromModels(models []model.Post, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Posts = make([]PostResponse, len(models))
	for i, mod := range models {
		r.Posts[i].FromModel(mod)
	}
}
