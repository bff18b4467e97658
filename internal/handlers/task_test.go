package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Sayan-dev731/attendance-api/internal/constants"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/repository"
	"github.com/Sayan-dev731/attendance-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskComment{},
		&models.TimeEntry{},
		&models.TaskDependency{},
	)
	suite.Require().NoError(err)

	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		nil, // no AI service in tests
	)
	suite.handler = NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(name string, role models.UserRole) *models.User {
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, assignedTo, assignedBy uint64) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		AssignedTo:  assignedTo,
		AssignedBy:  assignedBy,
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
		Category:    models.TaskCategoryOther,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUserRole, user.Role)

	return c, w
}

func (suite *TaskHandlerTestSuite) setTaskIDParam(c *gin.Context, task *models.Task) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(task.ID, 10)}}
}

// TestListTasks_EmployeeCannotListOthers tests that the assigned_to filter
// is overridden for employee callers
func (suite *TaskHandlerTestSuite) TestListTasks_EmployeeCannotListOthers() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	other := suite.createTestUser("other", models.RoleEmployee)
	suite.createTestTask("Mine", worker.ID, hr.ID)
	suite.createTestTask("Theirs", other.ID, hr.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, worker)
	c.Request.URL.RawQuery = "assigned_to=" + strconv.FormatUint(other.ID, 10)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), "Mine", firstTask["title"])
}

// TestListTasks_StatusSet tests the comma-separated status filter
func (suite *TaskHandlerTestSuite) TestListTasks_StatusSet() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	suite.createTestTask("Pending", worker.ID, hr.ID)
	overdue := suite.createTestTask("Overdue", worker.ID, hr.ID)
	suite.db.Model(overdue).Update("status", models.TaskStatusOverdue)
	done := suite.createTestTask("Done", worker.ID, hr.ID)
	suite.db.Model(done).Update("status", models.TaskStatusCompleted)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, hr)
	c.Request.URL.RawQuery = "assigned_to=" + strconv.FormatUint(worker.ID, 10) + "&status=pending,overdue"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 2)

	pagination := response["pagination"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), pagination["total"])
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetTask_NotFound tests that a missing task reports 404, never 403
func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	worker := suite.createTestUser("worker", models.RoleEmployee)

	c, w := suite.createAuthContext("GET", "/api/tasks/9999", nil, worker)
	c.Params = gin.Params{{Key: "id", Value: "9999"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetTask_Forbidden tests access denial for unrelated employees
func (suite *TaskHandlerTestSuite) TestGetTask_Forbidden() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	stranger := suite.createTestUser("stranger", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, stranger)
	suite.setTaskIDParam(c, task)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"assigned_to": worker.ID,
		"due_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"priority":    "high",
		"category":    "development",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, hr)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response["title"])
	assert.Equal(suite.T(), float64(hr.ID), response["assigned_by"])
	assert.Equal(suite.T(), float64(worker.ID), response["assigned_to"])
}

// TestCreateTask_EmployeeForbidden tests that employees cannot create tasks
func (suite *TaskHandlerTestSuite) TestCreateTask_EmployeeForbidden() {
	worker := suite.createTestUser("worker", models.RoleEmployee)

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"assigned_to": worker.ID,
		"due_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"priority":    "high",
		"category":    "development",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, worker)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_MissingRequiredField tests validation of required fields
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingRequiredField() {
	hr := suite.createTestUser("hr", models.RoleHR)

	// Missing description and due_date
	requestBody := map[string]interface{}{
		"title":       "New Task",
		"assigned_to": 1,
		"priority":    "high",
		"category":    "development",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, hr)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_AssigneeNotFound tests creation against a missing assignee
func (suite *TaskHandlerTestSuite) TestCreateTask_AssigneeNotFound() {
	hr := suite.createTestUser("hr", models.RoleHR)

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"assigned_to": 9999,
		"due_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"priority":    "high",
		"category":    "development",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, hr)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTask_AssigneeCompletion tests the completion scenario: status
// applied with forced progress, unauthorized priority dropped
func (suite *TaskHandlerTestSuite) TestUpdateTask_AssigneeCompletion() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	requestBody := map[string]interface{}{
		"status":   "completed",
		"progress": 40,
		"priority": "urgent",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, worker)
	suite.setTaskIDParam(c, task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", response["status"])
	assert.Equal(suite.T(), float64(100), response["progress"])
	assert.NotNil(suite.T(), response["completed_at"])
	assert.Equal(suite.T(), "medium", response["priority"])
}

// TestUpdateTask_InvalidBody tests update with malformed JSON
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidBody() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", []byte("invalid json"), hr)
	suite.setTaskIDParam(c, task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_AdminOnly tests deletion gating
func (suite *TaskHandlerTestSuite) TestDeleteTask_AdminOnly() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task to Delete", worker.ID, admin.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, hr)
	suite.setTaskIDParam(c, task)
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/tasks/1", nil, admin)
	suite.setTaskIDParam(c, task)
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestAddComment_Success tests comment creation by the task creator
func (suite *TaskHandlerTestSuite) TestAddComment_Success() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	requestBody := map[string]interface{}{
		"text": "looks good",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, hr)
	suite.setTaskIDParam(c, task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	comments := response["comments"].([]interface{})
	assert.Len(suite.T(), comments, 1)
}

// TestAddComment_MissingText tests comment validation
func (suite *TaskHandlerTestSuite) TestAddComment_MissingText() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	body, _ := json.Marshal(map[string]interface{}{})

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, hr)
	suite.setTaskIDParam(c, task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestAddTimeEntry_Success tests time entry creation by the assignee
func (suite *TaskHandlerTestSuite) TestAddTimeEntry_Success() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	requestBody := map[string]interface{}{
		"start_time":  "2026-03-02T09:00:00Z",
		"end_time":    "2026-03-02T09:45:00Z",
		"description": "code review",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/time-entries", body, worker)
	suite.setTaskIDParam(c, task)

	suite.handler.AddTimeEntry(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	entries := response["time_entries"].([]interface{})
	assert.Len(suite.T(), entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(suite.T(), float64(45), entry["duration"])
}

// TestAddTimeEntry_EndBeforeStart tests time range validation
func (suite *TaskHandlerTestSuite) TestAddTimeEntry_EndBeforeStart() {
	hr := suite.createTestUser("hr", models.RoleHR)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, hr.ID)

	requestBody := map[string]interface{}{
		"start_time": "2026-03-02T09:45:00Z",
		"end_time":   "2026-03-02T09:00:00Z",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/time-entries", body, worker)
	suite.setTaskIDParam(c, task)

	suite.handler.AddTimeEntry(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.TimeEntry{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestAddTimeEntry_NonAssigneeForbidden tests the assignee-only gate
func (suite *TaskHandlerTestSuite) TestAddTimeEntry_NonAssigneeForbidden() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Task", worker.ID, admin.ID)

	requestBody := map[string]interface{}{
		"start_time": "2026-03-02T09:00:00Z",
		"end_time":   "2026-03-02T10:00:00Z",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/time-entries", body, admin)
	suite.setTaskIDParam(c, task)

	suite.handler.AddTimeEntry(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGenerateTasks_NotConfigured tests the 503 when no AI service is wired
func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	hr := suite.createTestUser("hr", models.RoleHR)

	body, _ := json.Marshal(map[string]interface{}{
		"text": "prepare the quarterly review deck by Friday",
	})

	c, w := suite.createAuthContext("POST", "/api/tasks/generate", body, hr)

	suite.handler.GenerateTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
