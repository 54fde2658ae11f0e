package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/addrbook/contacts-api/internal/middleware"
	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
	"github.com/addrbook/contacts-api/internal/service"
)

// ContactHandler serves the address-book endpoints. All routes require an
// authenticated user; contacts are always scoped to the owner.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a new ContactHandler instance.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List returns the user's contacts with skip/limit pagination.
func (h *ContactHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 100)

	contacts, err := h.contactService.List(c.Request.Context(), user, skip, limit)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Search filters contacts by first name, last name or email (OR semantics).
func (h *ContactHandler) Search(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	filters := repository.ContactSearch{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}

	contacts, err := h.contactService.Search(c.Request.Context(), user, filters)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// week.
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.contactService.UpcomingBirthdays(c.Request.Context(), user)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Get returns a single contact by id.
func (h *ContactHandler) Get(c *gin.Context) {
	h.withContact(c, func(user *models.User, id int64) (*models.Contact, error) {
		return h.contactService.Get(c.Request.Context(), user, id)
	}, http.StatusOK)
}

// Create adds a new contact.
func (h *ContactHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), user, input)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// Update replaces a contact's fields.
func (h *ContactHandler) Update(c *gin.Context) {
	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.withContact(c, func(user *models.User, id int64) (*models.Contact, error) {
		return h.contactService.Update(c.Request.Context(), user, id, input)
	}, http.StatusOK)
}

// Delete removes a contact and returns its last state.
func (h *ContactHandler) Delete(c *gin.Context) {
	h.withContact(c, func(user *models.User, id int64) (*models.Contact, error) {
		return h.contactService.Delete(c.Request.Context(), user, id)
	}, http.StatusOK)
}

// withContact factors the shared id-parsing and not-found mapping of the
// single-contact routes.
func (h *ContactHandler) withContact(c *gin.Context, op func(*models.User, int64) (*models.Contact, error), status int) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid contact id")
		return
	}

	contact, err := op(user, id)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, "Contact not found")
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(status, contact)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
