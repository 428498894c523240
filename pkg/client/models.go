package client

import (
	"time"

	"github.com/google/uuid"
)

// ObjectType discriminates the resources returned by the API.
type ObjectType string

const (
	ObjectTypeAuthentication ObjectType = "AUTHENTICATION"
	ObjectTypeWorker         ObjectType = "WORKER"
	ObjectTypePrincipal      ObjectType = "PRINCIPAL"
	ObjectTypePrincipalPage  ObjectType = "PRINCIPAL_PAGE"
	ObjectTypeProcess        ObjectType = "PROCESS"
	ObjectTypeProcessPage    ObjectType = "PROCESS_PAGE"
	ObjectTypeTask           ObjectType = "TASK"
	ObjectTypeTaskPage       ObjectType = "TASK_PAGE"
)

// AuthenticationType selects what kind of credential an authentication carries.
type AuthenticationType string

const (
	AuthenticationTypeEngine            AuthenticationType = "ENGINE"
	AuthenticationTypeEngineToken       AuthenticationType = "ENGINE_TOKEN"
	AuthenticationTypeEngineCertificate AuthenticationType = "ENGINE_CERTIFICATE"
)

// Authentication is issued to engines and workers connecting to KuFlow.
type Authentication struct {
	ObjectType ObjectType         `json:"objectType,omitempty"`
	ID         string             `json:"id"`
	Type       AuthenticationType `json:"type,omitempty"`
	TenantID   *uuid.UUID         `json:"tenantId,omitempty"`
	Token      string             `json:"token,omitempty"`
	ExpiredAt  *time.Time         `json:"expiredAt,omitempty"`
}

// AuthenticationCreateParams is the body of Authentication.Create.
type AuthenticationCreateParams struct {
	Type     AuthenticationType `json:"type" validate:"required,oneof=ENGINE ENGINE_TOKEN ENGINE_CERTIFICATE"`
	TenantID *uuid.UUID         `json:"tenantId,omitempty"`
}

// KmsKey is a symmetric key managed by the KuFlow key service.
type KmsKey struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Audit holds the bookkeeping fields shared by mutable resources.
type Audit struct {
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	LastModifiedBy *uuid.UUID `json:"lastModifiedBy,omitempty"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
}

// Worker describes a process polling a task queue on behalf of a tenant.
type Worker struct {
	Audit
	ObjectType     ObjectType  `json:"objectType,omitempty"`
	ID             uuid.UUID   `json:"id"`
	Identity       string      `json:"identity"`
	TaskQueue      string      `json:"taskQueue"`
	WorkflowTypes  []string    `json:"workflowTypes,omitempty"`
	ActivityTypes  []string    `json:"activityTypes,omitempty"`
	Hostname       string      `json:"hostname"`
	IP             string      `json:"ip"`
	InstallationID *uuid.UUID  `json:"installationId,omitempty"`
	RobotIDs       []uuid.UUID `json:"robotIds,omitempty"`
	TenantID       *uuid.UUID  `json:"tenantId,omitempty"`
}

// WorkerCreateParams is the body of Worker.CreateOrUpdate. ID is the
// idempotency key; a nil ID lets the server pick one.
type WorkerCreateParams struct {
	ID             *uuid.UUID  `json:"id,omitempty"`
	Identity       string      `json:"identity" validate:"required,max=255"`
	TaskQueue      string      `json:"taskQueue" validate:"required,max=255"`
	WorkflowTypes  []string    `json:"workflowTypes,omitempty"`
	ActivityTypes  []string    `json:"activityTypes,omitempty"`
	Hostname       string      `json:"hostname" validate:"required,max=255"`
	IP             string      `json:"ip" validate:"required,ip"`
	InstallationID *uuid.UUID  `json:"installationId,omitempty"`
	RobotIDs       []uuid.UUID `json:"robotIds,omitempty"`
	TenantID       *uuid.UUID  `json:"tenantId,omitempty"`
}

// PrincipalType is the kind of actor behind a principal.
type PrincipalType string

const (
	PrincipalTypeUser        PrincipalType = "USER"
	PrincipalTypeApplication PrincipalType = "APPLICATION"
	PrincipalTypeSystem      PrincipalType = "SYSTEM"
)

type PrincipalUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type PrincipalApplication struct {
	ID uuid.UUID `json:"id"`
}

// Principal is a user, application or system actor of a tenant.
type Principal struct {
	ObjectType  ObjectType            `json:"objectType,omitempty"`
	ID          uuid.UUID             `json:"id"`
	Type        PrincipalType         `json:"type"`
	Name        string                `json:"name,omitempty"`
	User        *PrincipalUser        `json:"user,omitempty"`
	Application *PrincipalApplication `json:"application,omitempty"`
}

// PageMetadata describes the position of a page in a result set.
type PageMetadata struct {
	Size          int   `json:"size"`
	Page          int   `json:"page"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type PrincipalPage struct {
	ObjectType ObjectType   `json:"objectType,omitempty"`
	Metadata   PageMetadata `json:"metadata"`
	Content    []Principal  `json:"content"`
}

// JSONValue is a free-form document with its schema validation state.
type JSONValue struct {
	Valid *bool          `json:"valid,omitempty"`
	Value map[string]any `json:"value,omitempty"`
}

type ProcessState string

const (
	ProcessStateRunning   ProcessState = "RUNNING"
	ProcessStateCompleted ProcessState = "COMPLETED"
	ProcessStateCancelled ProcessState = "CANCELLED"
)

type ProcessDefinitionSummary struct {
	ID      uuid.UUID `json:"id"`
	Version uuid.UUID `json:"version"`
	Name    string    `json:"name,omitempty"`
}

// Process is a running or finished instance of a process definition.
type Process struct {
	Audit
	ObjectType        ObjectType               `json:"objectType,omitempty"`
	ID                uuid.UUID                `json:"id"`
	State             ProcessState             `json:"state"`
	ProcessDefinition ProcessDefinitionSummary `json:"processDefinition"`
	Metadata          *JSONValue               `json:"metadata,omitempty"`
	InitiatorID       *uuid.UUID               `json:"initiatorId,omitempty"`
	TenantID          *uuid.UUID               `json:"tenantId,omitempty"`
}

type ProcessPage struct {
	ObjectType ObjectType   `json:"objectType,omitempty"`
	Metadata   PageMetadata `json:"metadata"`
	Content    []Process    `json:"content"`
}

// ProcessCreateParams is the body of Process.Create. ID is the idempotency key.
type ProcessCreateParams struct {
	ID                  *uuid.UUID     `json:"id,omitempty"`
	ProcessDefinitionID uuid.UUID      `json:"processDefinitionId" validate:"required"`
	InitiatorID         *uuid.UUID     `json:"initiatorId,omitempty"`
	InitiatorEmail      string         `json:"initiatorEmail,omitempty" validate:"omitempty,email"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// ProcessChangeInitiatorParams identifies the new initiator by id or by
// email, never both.
type ProcessChangeInitiatorParams struct {
	InitiatorID    *uuid.UUID `json:"initiatorId,omitempty" validate:"required_without=InitiatorEmail,excluded_with=InitiatorEmail"`
	InitiatorEmail string     `json:"initiatorEmail,omitempty" validate:"omitempty,email"`
}

type TaskState string

const (
	TaskStateReady     TaskState = "READY"
	TaskStateClaimed   TaskState = "CLAIMED"
	TaskStateCompleted TaskState = "COMPLETED"
	TaskStateCancelled TaskState = "CANCELLED"
)

type TaskDefinitionSummary struct {
	ID      uuid.UUID `json:"id"`
	Version uuid.UUID `json:"version"`
	Code    string    `json:"code"`
	Name    string    `json:"name,omitempty"`
}

// ElementValue is one value of a task form element.
type ElementValue struct {
	Type  string `json:"type"`
	Valid *bool  `json:"valid,omitempty"`
	Value any    `json:"value"`
}

type TaskLogLevel string

const (
	TaskLogLevelInfo  TaskLogLevel = "INFO"
	TaskLogLevelWarn  TaskLogLevel = "WARN"
	TaskLogLevelError TaskLogLevel = "ERROR"
)

type TaskLog struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Message   string       `json:"message"`
	Level     TaskLogLevel `json:"level"`
}

// Task is a unit of work inside a process, owned by at most one principal.
type Task struct {
	Audit
	ObjectType     ObjectType                `json:"objectType,omitempty"`
	ID             uuid.UUID                 `json:"id"`
	State          TaskState                 `json:"state"`
	TaskDefinition TaskDefinitionSummary     `json:"taskDefinition"`
	ProcessID      uuid.UUID                 `json:"processId"`
	ElementValues  map[string][]ElementValue `json:"elementValues,omitempty"`
	Logs           []TaskLog                 `json:"logs,omitempty"`
	Owner          *Principal                `json:"owner,omitempty"`
}

type TaskPage struct {
	ObjectType ObjectType   `json:"objectType,omitempty"`
	Metadata   PageMetadata `json:"metadata"`
	Content    []Task       `json:"content"`
}

// TaskCreateParams is the body of Task.Create. ID is the idempotency key.
type TaskCreateParams struct {
	ID                 *uuid.UUID                `json:"id,omitempty"`
	ProcessID          uuid.UUID                 `json:"processId" validate:"required"`
	TaskDefinitionCode string                    `json:"taskDefinitionCode" validate:"required,max=50"`
	OwnerID            *uuid.UUID                `json:"ownerId,omitempty"`
	ElementValues      map[string][]ElementValue `json:"elementValues,omitempty"`
}

// TaskAssignParams identifies the new owner by id or by email, never both.
type TaskAssignParams struct {
	OwnerID    *uuid.UUID `json:"ownerId,omitempty" validate:"required_without=OwnerEmail,excluded_with=OwnerEmail"`
	OwnerEmail string     `json:"ownerEmail,omitempty" validate:"omitempty,email"`
}

type TaskAppendLogParams struct {
	Message string       `json:"message" validate:"required,max=4000"`
	Level   TaskLogLevel `json:"level" validate:"required,oneof=INFO WARN ERROR"`
}

// PageOptions selects a page of a result set. Zero values leave the
// server defaults in place.
type PageOptions struct {
	Page int      `validate:"gte=0"`
	Size int      `validate:"omitempty,gte=1,lte=1000"`
	Sort []string `validate:"omitempty,dive,required"`
}

type PrincipalFindOptions struct {
	PageOptions
	Type     PrincipalType `validate:"omitempty,oneof=USER APPLICATION SYSTEM"`
	GroupIDs []uuid.UUID
}

type ProcessFindOptions struct {
	PageOptions
	TenantIDs []uuid.UUID
}

type TaskFindOptions struct {
	PageOptions
	ProcessIDs          []uuid.UUID
	States              []TaskState `validate:"omitempty,dive,oneof=READY CLAIMED COMPLETED CANCELLED"`
	TaskDefinitionCodes []string
	TenantIDs           []uuid.UUID
}

// DefaultError is the error document returned by the API on any
// non-success status.
type DefaultError struct {
	Timestamp time.Time          `json:"timestamp"`
	Status    int                `json:"status"`
	Message   string             `json:"message"`
	Errors    []DefaultErrorInfo `json:"errors,omitempty"`
}

type DefaultErrorInfo struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Location     string `json:"location,omitempty"`
	LocationType string `json:"locationType,omitempty"`
}
