package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/middleware"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/users"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/apperr"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/storage"
)

type HousesHandler struct {
	Logger   *slog.Logger
	Listings *listings.Repo
	Bookings *bookings.Service
	Photos   storage.Storage
}

func NewHousesHandler(l *slog.Logger, repo *listings.Repo, bsvc *bookings.Service, photos storage.Storage) *HousesHandler {
	return &HousesHandler{Logger: l, Listings: repo, Bookings: bsvc, Photos: photos}
}

// GET /api/houses
func (h *HousesHandler) List(c *gin.Context) {
	houses, err := h.Listings.ListVacant(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(houses))
	for _, house := range houses {
		out = append(out, houseResponse(house))
	}
	c.JSON(http.StatusOK, gin.H{"houses": out})
}

// GET /api/houses/:id
func (h *HousesHandler) Get(c *gin.Context) {
	house, err := h.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("House not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"house": houseResponse(house)})
}

// POST /api/houses (multipart: title, description, location, price, photo)
func (h *HousesHandler) Create(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.Fail(c, apperr.UnauthorizedErr("Authentication required."))
		return
	}
	if middleware.CurrentUserRole(c) != users.RoleLandlord {
		middleware.Fail(c, apperr.ForbiddenErr("Only landlords can list houses."))
		return
	}

	title := c.PostForm("title")
	location := c.PostForm("location")
	if title == "" || location == "" {
		middleware.Fail(c, apperr.InvalidErr("Check the highlighted fields.", map[string]string{
			"title":    "This field is required.",
			"location": "This field is required.",
		}))
		return
	}

	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil || price <= 0 {
		middleware.Fail(c, apperr.InvalidErr("Price must be a positive whole amount in KES.", map[string]string{
			"price": "Invalid value.",
		}))
		return
	}

	var photoURL, photoKey string
	if file, err := c.FormFile("photo"); err == nil {
		src, err := file.Open()
		if err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		defer src.Close()

		res, err := h.Photos.Put(c.Request.Context(), src, storage.PutInput{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Size:        file.Size,
		})
		if err != nil {
			h.Logger.Error("photo upload failed", "err", err)
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		photoURL, photoKey = res.URL, res.Key
	}

	house, err := h.Listings.Create(c.Request.Context(), listings.CreateInput{
		Title:       title,
		Description: c.PostForm("description"),
		Location:    location,
		PriceCents:  price * 100,
		PhotoURL:    photoURL,
		PhotoKey:    photoKey,
		OwnerID:     actorID,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"house": houseResponse(house)})
}

// GET /api/dashboard — a landlord's houses with their bookings.
func (h *HousesHandler) Dashboard(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.Fail(c, apperr.UnauthorizedErr("Authentication required."))
		return
	}

	houses, err := h.Listings.ListByOwner(c.Request.Context(), actorID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(houses))
	for _, house := range houses {
		bks, err := h.Bookings.ListByHouse(c.Request.Context(), house.ID)
		if err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		entries := make([]gin.H, 0, len(bks))
		for _, b := range bks {
			entries = append(entries, gin.H{
				"id":           b.ID,
				"user_id":      b.UserID,
				"phone_number": b.PhoneNumber,
				"created_at":   b.CreatedAt,
			})
		}
		item := houseResponse(house)
		item["bookings"] = entries
		out = append(out, item)
	}

	c.JSON(http.StatusOK, gin.H{"houses": out})
}

func houseResponse(h listings.House) gin.H {
	return gin.H{
		"id":          h.ID,
		"title":       h.Title,
		"description": h.Description,
		"location":    h.Location,
		"price_cents": h.PriceCents,
		"photo_url":   h.PhotoURL,
		"status":      h.Status,
		"created_at":  h.CreatedAt,
	}
}
