package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/smartmenu-api/hub"
	"github.com/yeremiapane/smartmenu-api/metrics"
	"github.com/yeremiapane/smartmenu-api/middlewares"
	"github.com/yeremiapane/smartmenu-api/models"
	"github.com/yeremiapane/smartmenu-api/services"
	"github.com/yeremiapane/smartmenu-api/utils"
	"gorm.io/gorm"
)

const defaultSeats = 4

type TableController struct {
	DB       *gorm.DB
	Resolver *services.TableResolver
	QR       *services.QRProvisioner
	Hub      *hub.Hub
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func NewTableController(db *gorm.DB, qr *services.QRProvisioner, h *hub.Hub, m *metrics.Metrics, log logrus.FieldLogger) *TableController {
	return &TableController{
		DB:       db,
		Resolver: services.NewTableResolver(db),
		QR:       qr,
		Hub:      h,
		Metrics:  m,
		Log:      log.WithField("component", "tables"),
	}
}

// TableSummary is one row of the table list.
type TableSummary struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	Label     *string   `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// GetAllTables -> all tables of a restaurant ordered by number
func (tc *TableController) GetAllTables(c *gin.Context) {
	restaurantID := c.Query("restaurantId")
	if restaurantID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurantId is required"))
		return
	}

	var tables []models.Table
	if err := tc.DB.WithContext(c.Request.Context()).
		Where("restaurant_id = ?", restaurantID).
		Order("number").
		Find(&tables).Error; err != nil {
		tc.Log.WithError(err).Error("fetch tables")
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to fetch tables", err)
		return
	}

	summaries := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		summaries = append(summaries, TableSummary{
			ID:        t.ID,
			Number:    t.Number,
			Capacity:  t.Seats,
			Status:    t.Status,
			Label:     t.Label,
			CreatedAt: t.CreatedAt,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", summaries)
}

// LookupTable -> resolve ?table=, ?tableId= or ?id= as either a key or a table number
func (tc *TableController) LookupTable(c *gin.Context) {
	lookupValue := firstNonEmpty(c.Query("table"), c.Query("tableId"), c.Query("id"))

	ref, err := services.ParseTableRef(lookupValue)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	log := tc.Log.WithFields(logrus.Fields{"lookup": lookupValue, "search_type": ref.SearchType()})
	view, err := tc.Resolver.Resolve(c.Request.Context(), ref, c.Query("restaurantId"))
	if err != nil {
		var nf *services.NotFoundError
		if errors.As(err, &nf) {
			tc.observeLookup(ref.SearchType(), metrics.LookupNotFound)
			log.Info("table not found")
			c.JSON(http.StatusNotFound, gin.H{
				"error":       "Table not found",
				"searchedFor": nf.SearchedFor,
				"searchType":  nf.SearchType,
			})
			return
		}
		tc.observeLookup(ref.SearchType(), metrics.LookupError)
		log.WithError(err).Error("table lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to lookup table",
			"details": err.Error(),
		})
		return
	}

	tc.observeLookup(ref.SearchType(), metrics.LookupFound)
	log.WithField("table_id", view.ID).Debug("table found")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"table":        view,
		"displayLabel": view.DisplayLabel(),
	})
}

// GetTableInfo -> one table by key (customer menu)
func (tc *TableController) GetTableInfo(c *gin.Context) {
	table, ok := tc.findByKey(c, c.Param("tableId"))
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", services.NewTableView(*table))
}

// GetTableQR -> the table's QR record, created on first request. Only table
// keys are accepted; numbers are not unique across restaurants.
func (tc *TableController) GetTableQR(c *gin.Context) {
	table, ok := tc.findByKey(c, c.Param("tableId"))
	if !ok {
		return
	}

	qr, created, err := tc.QR.Provision(c.Request.Context(), table.ID)
	if err != nil {
		tc.observeQR(metrics.QRError)
		tc.Log.WithError(err).WithField("table_id", table.ID).Error("qr provisioning failed")
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to fetch QR code", err)
		return
	}

	if created {
		tc.observeQR(metrics.QRCreated)
		tc.Log.WithFields(logrus.Fields{"table_id": table.ID, "qr_data": qr.QRData}).Info("qr code created")
		tc.broadcast(table.RestaurantID, hub.EventQRCreate, qr)
	} else {
		tc.observeQR(metrics.QRExisting)
	}
	c.JSON(http.StatusOK, qr)
}

// CreateTable -> add a table, optionally assigning a menu list
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		RestaurantID string  `json:"restaurantId"`
		TableNumber  int     `json:"tableNumber" binding:"required,gt=0"`
		Capacity     int     `json:"capacity" binding:"omitempty,gt=0"`
		Label        *string `json:"label"`
		MenuListID   string  `json:"menuListId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.RestaurantID == "" {
		req.RestaurantID = c.GetString(middlewares.CtxRestaurantID)
	}
	if req.RestaurantID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurantId and tableNumber are required"))
		return
	}
	if !canManage(c, req.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	table := models.Table{
		RestaurantID: req.RestaurantID,
		Number:       req.TableNumber,
		Seats:        defaultSeats,
		Status:       models.TableStatusAvailable,
		Label:        normalizeLabel(req.Label),
	}
	if req.Capacity > 0 {
		table.Seats = req.Capacity
	}

	err := tc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		if req.MenuListID != "" {
			return assignMenu(tx, table.ID, req.MenuListID)
		}
		return nil
	})
	if err != nil {
		tc.Log.WithError(err).Error("create table")
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to create table", err)
		return
	}

	tc.broadcast(table.RestaurantID, hub.EventTableCreate, table)
	tc.Log.WithFields(logrus.Fields{"table_id": table.ID, "number": table.Number}).Info("table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTable -> partial update; isActive maps to available/unavailable
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		TableNumber *int    `json:"tableNumber" binding:"omitempty,gt=0"`
		Capacity    *int    `json:"capacity" binding:"omitempty,gt=0"`
		IsActive    *bool   `json:"isActive"`
		Label       *string `json:"label"`
		MenuListID  string  `json:"menuListId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, ok := tc.findByKey(c, c.Param("tableId"))
	if !ok {
		return
	}
	if !canManage(c, table.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if req.TableNumber != nil {
		table.Number = *req.TableNumber
	}
	if req.Capacity != nil {
		table.Seats = *req.Capacity
	}
	if req.IsActive != nil {
		table.Status = models.TableStatusUnavailable
		if *req.IsActive {
			table.Status = models.TableStatusAvailable
		}
	}
	if req.Label != nil {
		table.Label = normalizeLabel(req.Label)
	}

	err := tc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(table).Error; err != nil {
			return err
		}
		if req.MenuListID == "" {
			return nil
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.MenuAssignment{}).Error; err != nil {
			return err
		}
		return assignMenu(tx, table.ID, req.MenuListID)
	})
	if err != nil {
		tc.Log.WithError(err).WithField("table_id", table.ID).Error("update table")
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to update table", err)
		return
	}

	tc.broadcast(table.RestaurantID, hub.EventTableUpdate, table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> remove a table with its QR code and menu assignments
func (tc *TableController) DeleteTable(c *gin.Context) {
	table, ok := tc.findByKey(c, c.Param("tableId"))
	if !ok {
		return
	}
	if !canManage(c, table.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	err := tc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.QRCode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.MenuAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(table).Error
	})
	if err != nil {
		tc.Log.WithError(err).WithField("table_id", table.ID).Error("delete table")
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to delete table", err)
		return
	}

	tc.broadcast(table.RestaurantID, hub.EventTableDelete, gin.H{"id": table.ID})
	tc.Log.WithField("table_id", table.ID).Info("table deleted")
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", gin.H{"id": table.ID})
}

// findByKey loads a table by primary key and writes the 404/500 itself.
func (tc *TableController) findByKey(c *gin.Context, id string) (*models.Table, bool) {
	ref, err := services.ParseTableRef(id)
	key, isKey := ref.(services.KeyRef)
	if err != nil || !isKey {
		utils.RespondError(c, http.StatusNotFound, services.ErrTableNotFound)
		return nil, false
	}

	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).Where("LOWER(id) = ?", key.ID).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, services.ErrTableNotFound)
			return nil, false
		}
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to fetch table", err)
		return nil, false
	}
	return &table, true
}

func (tc *TableController) broadcast(restaurantID, event string, data interface{}) {
	if tc.Hub != nil {
		tc.Hub.Broadcast(restaurantID, hub.Message{Event: event, Data: data})
	}
}

func (tc *TableController) observeLookup(strategy, result string) {
	if tc.Metrics != nil {
		tc.Metrics.ObserveLookup(strategy, result)
	}
}

func (tc *TableController) observeQR(outcome string) {
	if tc.Metrics != nil {
		tc.Metrics.ObserveQR(outcome)
	}
}

func assignMenu(tx *gorm.DB, tableID, menuID string) error {
	return tx.Create(&models.MenuAssignment{MenuID: menuID, TableID: tableID}).Error
}

// canManage reports whether the caller's token belongs to restaurantID.
// Tokens without a restaurant (platform admins) may manage any table.
func canManage(c *gin.Context, restaurantID string) bool {
	own := c.GetString(middlewares.CtxRestaurantID)
	return own == "" || own == restaurantID
}

func normalizeLabel(label *string) *string {
	if label == nil || *label == "" {
		return nil
	}
	return label
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
