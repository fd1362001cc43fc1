package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

var frontierColumns = []string{"frontier_id", "project_id", "name", "description", "time"}

func expectProjectRow(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), "Billing", nil, time.Now(), userID.String()))
}

func expectFrontierRow(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT frontier_id, project_id, name, description, time FROM frontiers`).
		WithArgs(projectID, frontierID).
		WillReturnRows(sqlmock.NewRows(frontierColumns).
			AddRow(frontierID.String(), projectID.String(), "Backoffice", nil, time.Now()))
}

func TestListFrontiers(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM frontiers`).
		WithArgs(projectID, "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT frontier_id, project_id, name, description, time FROM frontiers`).
		WithArgs(projectID, "", 10, 0).
		WillReturnRows(sqlmock.NewRows(frontierColumns).
			AddRow(frontierID.String(), projectID.String(), "Backoffice", nil, time.Now()))

	page, err := New().ListFrontiers(context.Background(), tx, projectID, storage.PageQuery{})
	if err != nil {
		t.Fatalf("list frontiers: %v", err)
	}
	if page.Records != 1 || len(page.Items) != 1 || page.Items[0].Name != "Backoffice" {
		t.Errorf("page = %+v", page)
	}
	expectationsMet(t, mock)
}

// Creating a frontier seeds the fourteen adjustment factors with ABSENT
// influence and the five empirical values with their default percentages.
func TestCreateFrontierSeedsDefaults(t *testing.T) {
	tx, mock := newTestTx(t)

	expectProjectRow(mock)
	mock.ExpectExec(`INSERT INTO frontiers`).
		WithArgs(sqlmock.AnyArg(), projectID, tenantID, "Backoffice", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	for _, factor := range fpa.FactorTypes {
		mock.ExpectExec(`INSERT INTO factors`).
			WithArgs(sqlmock.AnyArg(), tenantID, string(factor), string(fpa.InfluenceAbsent)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for _, empirical := range fpa.EmpiricalTypes {
		mock.ExpectExec(`INSERT INTO empiricals`).
			WithArgs(sqlmock.AnyArg(), tenantID, string(empirical), fpa.DefaultEmpiricalValues[empirical]).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	frontier, err := New().CreateFrontier(context.Background(), tx, testIdent, projectID, "Backoffice", nil)
	if err != nil {
		t.Fatalf("create frontier: %v", err)
	}
	if frontier.Project != projectID || frontier.Name != "Backoffice" {
		t.Errorf("frontier = %+v", frontier)
	}
	expectationsMet(t, mock)
}

func TestCreateFrontierUnknownProject(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectQuery(`SELECT project_id, name, description, time, user_id FROM projects`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns))

	_, err := New().CreateFrontier(context.Background(), tx, testIdent, projectID, "Backoffice", nil)
	if !svcerrors.Is(err, svcerrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateFrontierNotFound(t *testing.T) {
	tx, mock := newTestTx(t)

	mock.ExpectExec(`UPDATE frontiers`).
		WithArgs(projectID, frontierID, "Backoffice", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := New().UpdateFrontier(context.Background(), tx, projectID, frontierID, "Backoffice", nil)
	if !svcerrors.Is(err, svcerrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	expectationsMet(t, mock)
}

func TestRemoveFrontierBlockedByFunctions(t *testing.T) {
	tx, mock := newTestTx(t)

	expectFrontierRow(mock)
	mock.ExpectExec(`DELETE FROM frontiers`).
		WithArgs(projectID, frontierID).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pqForeignKeyViolation)})

	err := New().RemoveFrontier(context.Background(), tx, projectID, frontierID)
	if !svcerrors.Is(err, svcerrors.CodeConstraint) {
		t.Fatalf("error = %v, want constraint", err)
	}
	expectationsMet(t, mock)
}

func TestListFactorsReturnsSinglePage(t *testing.T) {
	tx, mock := newTestTx(t)

	expectFrontierRow(mock)
	rows := sqlmock.NewRows([]string{"frontier_id", "factor", "influence"})
	for _, factor := range fpa.FactorTypes {
		rows.AddRow(frontierID.String(), string(factor), string(fpa.InfluenceAbsent))
	}
	mock.ExpectQuery(`SELECT frontier_id, factor, influence FROM factors`).
		WithArgs(frontierID).
		WillReturnRows(rows)

	page, err := New().ListFactors(context.Background(), tx, projectID, frontierID)
	if err != nil {
		t.Fatalf("list factors: %v", err)
	}
	if page.Pages != 1 || page.Records != 14 || len(page.Items) != 14 {
		t.Errorf("page = %+v", page)
	}
	expectationsMet(t, mock)
}

func TestUpdateFactor(t *testing.T) {
	tx, mock := newTestTx(t)

	expectFrontierRow(mock)
	mock.ExpectExec(`UPDATE factors`).
		WithArgs(frontierID, fpa.FactorPerformance, fpa.InfluenceStrong).
		WillReturnResult(sqlmock.NewResult(0, 1))

	factor, err := New().UpdateFactor(context.Background(), tx, projectID, frontierID, fpa.FactorPerformance, fpa.InfluenceStrong)
	if err != nil {
		t.Fatalf("update factor: %v", err)
	}
	if factor.Influence != fpa.InfluenceStrong {
		t.Errorf("influence = %s", factor.Influence)
	}
	expectationsMet(t, mock)
}

func TestUpdateEmpiricalRejectsOutOfRange(t *testing.T) {
	tx, _ := newTestTx(t)

	_, err := New().UpdateEmpirical(context.Background(), tx, projectID, frontierID, fpa.EmpiricalTesting, 130)
	if !svcerrors.Is(err, svcerrors.CodeConstraint) {
		t.Fatalf("error = %v, want constraint", err)
	}
}

func TestUpdateEmpirical(t *testing.T) {
	tx, mock := newTestTx(t)

	expectFrontierRow(mock)
	mock.ExpectExec(`UPDATE empiricals`).
		WithArgs(frontierID, fpa.EmpiricalTesting, 30).
		WillReturnResult(sqlmock.NewResult(0, 1))

	empirical, err := New().UpdateEmpirical(context.Background(), tx, projectID, frontierID, fpa.EmpiricalTesting, 30)
	if err != nil {
		t.Fatalf("update empirical: %v", err)
	}
	if empirical.Value != 30 {
		t.Errorf("value = %d", empirical.Value)
	}
	expectationsMet(t, mock)
}
