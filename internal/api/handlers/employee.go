package handlers

import (
	"strings"

	"timeclock/internal/services"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
	recordService   *services.RecordService
	auditService    *services.AuditService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, recordService *services.RecordService, auditService *services.AuditService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		recordService:   recordService,
		auditService:    auditService,
	}
}

type CreateEmployeeRequest struct {
	Name string   `json:"name" binding:"required"`
	PIN  string   `json:"pin" binding:"required"`
	Tags []string `json:"tags"`
}

type PINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type UpdateTagsRequest struct {
	PIN  string   `json:"pin" binding:"required"`
	Tags []string `json:"tags"`
}

// GetEmployees returns all employees
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	employees, err := h.employeeService.GetEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, employees)
}

// CreateEmployee creates a new employee
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), req.Name, req.PIN, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "create", "employee", employee.PIN, employee.Name)

	c.JSON(201, gin.H{"id": employee.ID, "name": employee.Name, "pin": employee.PIN, "tags": employee.Tags})
}

// DeleteEmployee removes an employee; their records are kept.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	var req PINRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.GetEmployee(c.Request.Context(), req.PIN)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), employee.PIN); err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "delete", "employee", employee.PIN, employee.Name)

	c.JSON(200, gin.H{"success": true, "name": employee.Name})
}

// UpdateTags replaces an employee's tags
func (h *EmployeeHandler) UpdateTags(c *gin.Context) {
	var req UpdateTagsRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.UpdateTags(c.Request.Context(), req.PIN, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "update_tags", "employee", employee.PIN, strings.Join(employee.Tags, ","))

	c.JSON(200, employee)
}

// GetStatus is the keypad lookup after a PIN is entered.
func (h *EmployeeHandler) GetStatus(c *gin.Context) {
	var req PINRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.recordService.EmployeeStatus(c.Request.Context(), req.PIN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, status)
}
