package hrportal

import (
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Feature endpoints consumed by the HR shell, relative to API.BaseURL. The
// Portal treats them as opaque; they are listed so that callers and the CLI
// share one catalog.
const (
	PathDashboardStats   = "dashboard/stats"
	PathEmployees        = "employees"
	PathUsers            = "users"
	PathPositions        = "positions"
	PathOrgHierarchy     = "org/hierarchy"
	PathDepartments      = "admin/departments"
	PathRoles            = "admin/roles"
	PathAdminMenus       = "admin/menus"
	PathHolidays         = "admin/holidays"
	PathLeaveTypes       = "admin/leave-types"
	PathClaimTypes       = "claim-types"
	PathLeaves           = "leaves"
	PathLeavesPending    = "leaves/pending"
	PathOvertime         = "overtime"
	PathOvertimePending  = "overtime/pending"
	PathClaims           = "claims"
	PathMyClaims         = "claims/my-claims"
	PathClaimsPending    = "claims/pending"
	PathAttendanceIn     = "attendance/check-in"
	PathAttendanceOut    = "attendance/check-out"
	PathApprovalsPending = "approvals/pending"
	PathApprovalsApprove = "approvals/approve"
	PathApprovalsReject  = "approvals/reject"
	PathReports          = "reports"
)

// EmployeePath addresses one employee.
func EmployeePath(id int64) string {
	return fmt.Sprintf("%s/%d", PathEmployees, id)
}

// RoleMenusPath addresses the menu ids mapped to a role.
func RoleMenusPath(roleID int64) string {
	return fmt.Sprintf("%s/%d/menus", PathRoles, roleID)
}

// LeaveStatusPath addresses the status of one leave request.
func LeaveStatusPath(id int64) string {
	return fmt.Sprintf("%s/%d/status", PathLeaves, id)
}

// OvertimeStatusPath addresses the status of one overtime request.
func OvertimeStatusPath(id int64) string {
	return fmt.Sprintf("%s/%d/status", PathOvertime, id)
}

// ClaimAttachmentsPath addresses the attachments of one claim.
func ClaimAttachmentsPath(claimID int64) string {
	return fmt.Sprintf("%s/%d/attachments", PathClaims, claimID)
}

// ClaimAttachmentDownloadPath addresses the binary content of one attachment.
func ClaimAttachmentDownloadPath(claimID, attachmentID int64) string {
	return fmt.Sprintf("%s/%d/attachments/%d/download", PathClaims, claimID, attachmentID)
}

// AttendanceByDatePath addresses the attendance report of one day.
func AttendanceByDatePath(day time.Time) string {
	return "attendance/report/date/" + day.Format(time.DateOnly)
}

// ReportKind names a report the backend can render.
type ReportKind string

const (
	ReportAttendance      ReportKind = "attendance"
	ReportLeave           ReportKind = "leave"
	ReportOvertime        ReportKind = "overtime"
	ReportClaim           ReportKind = "claim"
	ReportEmployeeSummary ReportKind = "employee-summary"
)

// ReportKinds lists every report kind.
var ReportKinds = []ReportKind{ReportAttendance, ReportLeave, ReportOvertime, ReportClaim, ReportEmployeeSummary}

// ExportFormat names a report export format.
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

// ReportPath addresses the JSON rows of a report.
func ReportPath(kind ReportKind) string {
	return PathReports + "/" + string(kind)
}

// ReportExportPath addresses the binary export of a report.
func ReportExportPath(kind ReportKind, format ExportFormat) (string, error) {
	if !slices.Contains(ReportKinds, kind) {
		return "", fmt.Errorf("unknown report kind %q", kind)
	}
	if format != ExportExcel && format != ExportPDF {
		return "", fmt.Errorf("unknown export format %q", format)
	}
	return fmt.Sprintf("%s/%s/export/%s", PathReports, kind, format), nil
}

// ReportQuery builds the shared report filter. Zero values are omitted.
func ReportQuery(start, end time.Time, departmentID int64) url.Values {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("startDate", start.Format(time.DateOnly))
	}
	if !end.IsZero() {
		q.Set("endDate", end.Format(time.DateOnly))
	}
	if departmentID != 0 {
		q.Set("departmentId", fmt.Sprint(departmentID))
	}
	return q
}
