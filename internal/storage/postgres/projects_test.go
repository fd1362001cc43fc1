package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

var projectColumns = []string{"project_id", "name", "description", "time", "user_id"}

func TestListProjects(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs("", 10, 0).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), "Billing", nil, time.Now(), userID.String()).
			AddRow(frontierID.String(), "Inventory", "stock control", time.Now(), userID.String()))

	page, err := New().ListProjects(context.Background(), tx, storage.PageQuery{})
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}

	if page.Records != 12 || page.Pages != 2 || page.Index != 1 || page.Size != 2 {
		t.Errorf("page = %+v", page)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "Billing" {
		t.Errorf("items = %+v", page.Items)
	}
	expectationsMet(t, mock)
}

func TestListProjectsFiltersByName(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("bill").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs("bill", 10, 0).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), "Billing", nil, time.Now(), userID.String()))

	page, err := New().ListProjects(context.Background(), tx, storage.PageQuery{Name: "bill"})
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if page.Records != 1 || len(page.Items) != 1 {
		t.Errorf("page = %+v", page)
	}
	expectationsMet(t, mock)
}

func TestProjectByIDNotFound(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns))

	_, err := New().ProjectByID(context.Background(), tx, projectID)
	if !svcerrors.Is(err, svcerrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	expectationsMet(t, mock)
}

func TestCreateProject(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), tenantID, "Billing", nil, sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	project, err := New().CreateProject(context.Background(), tx, testIdent, "Billing", nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.Name != "Billing" || project.User != userID {
		t.Errorf("project = %+v", project)
	}
	if project.ID.Version() != 7 {
		t.Errorf("id version = %d, want 7", project.ID.Version())
	}
	expectationsMet(t, mock)
}

func TestCreateProjectDuplicateName(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`INSERT INTO projects`).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pqUniqueViolation)})

	_, err := New().CreateProject(context.Background(), tx, testIdent, "Billing", nil)
	if !svcerrors.Is(err, svcerrors.CodeNameDuplicated) {
		t.Fatalf("error = %v, want name duplicated", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateProjectNotFound(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`UPDATE projects`).
		WithArgs(projectID, "Billing", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := New().UpdateProject(context.Background(), tx, projectID, "Billing", nil)
	if !svcerrors.Is(err, svcerrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateProjectReturnsFreshRecord(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`UPDATE projects`).
		WithArgs(projectID, "Billing v2", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), "Billing v2", nil, time.Now(), userID.String()))

	project, err := New().UpdateProject(context.Background(), tx, projectID, "Billing v2", nil)
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if project.Name != "Billing v2" {
		t.Errorf("name = %q", project.Name)
	}
	expectationsMet(t, mock)
}

func TestRemoveProject(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs(projectID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := New().RemoveProject(context.Background(), tx, projectID); err != nil {
		t.Fatalf("remove project: %v", err)
	}
	expectationsMet(t, mock)
}

func TestRemoveProjectBlockedByFrontiers(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs(projectID).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pqForeignKeyViolation)})

	err := New().RemoveProject(context.Background(), tx, projectID)
	if !svcerrors.Is(err, svcerrors.CodeConstraint) {
		t.Fatalf("error = %v, want constraint", err)
	}
	expectationsMet(t, mock)
}
