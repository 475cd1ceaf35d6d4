package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"go.uber.org/zap"
)

// HostAPIManagerInterface defines the raw calls against the host connection registry API.
type HostAPIManagerInterface interface {
	GetCurrentRegistryVersion(ctx context.Context) (int64, error)
	StartTransaction(ctx context.Context, version int64) (string, error)
	CommitTransaction(ctx context.Context, transactionID string) error
	RollbackTransaction(ctx context.Context, transactionID string) error
	ListDataSources(ctx context.Context, scope string) ([]models.ConnectionRecord, error)
	CreateDataSource(ctx context.Context, scope string, record models.ConnectionRecord, transactionID string) error
	DeleteDataSource(ctx context.Context, scope, name, transactionID string) error
	StoreCredentials(ctx context.Context, scope, name, password, transactionID string) error
	SendNotification(ctx context.Context, title, message string, severity models.Severity) error
	DownloadDriver(ctx context.Context, driverID string) error
}

// HostAPIManager is the resty based implementation of HostAPIManagerInterface.
type HostAPIManager struct {
	client *resty.Client
	logger *zap.Logger
}

// NewHostAPIManager initializes the API manager with the provided HostAPIConfig.
func NewHostAPIManager(config HostAPIConfig, logger *zap.Logger) *HostAPIManager {
	client := resty.New()
	client.SetBaseURL(config.APIURL)
	if config.Token != "" {
		client.SetAuthToken(config.Token)
	}
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	client.SetHeader("Content-Type", "application/json")
	client.SetDisableWarn(true)

	return newHostAPIManager(client, logger)
}

func newHostAPIManager(client *resty.Client, logger *zap.Logger) *HostAPIManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostAPIManager{
		client: client,
		logger: logger,
	}
}

// GetCurrentRegistryVersion retrieves the current registry version as an integer.
func (c *HostAPIManager) GetCurrentRegistryVersion(ctx context.Context) (int64, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/registry/version")
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve version: %w", err)
	}

	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("failed to retrieve version, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}

	version, err := strconv.ParseInt(resp.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse version as integer: %w", err)
	}

	return version, nil
}

// StartTransaction starts a new registry transaction.
func (c *HostAPIManager) StartTransaction(ctx context.Context, version int64) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("version", strconv.FormatInt(version, 10)).
		Post("/transactions")
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}

	if resp.StatusCode() != 201 {
		return "", fmt.Errorf("failed to start transaction, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}

	var transaction struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &transaction); err != nil {
		return "", fmt.Errorf("failed to parse transaction ID: %w", err)
	}

	return transaction.ID, nil
}

// CommitTransaction commits the specified registry transaction.
func (c *HostAPIManager) CommitTransaction(ctx context.Context, transactionID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", transactionID).
		Put("/transactions/{id}")
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if resp.StatusCode() != 202 {
		return fmt.Errorf("failed to commit transaction, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// RollbackTransaction rolls back the specified registry transaction.
func (c *HostAPIManager) RollbackTransaction(ctx context.Context, transactionID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", transactionID).
		Delete("/transactions/{id}")
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("failed to rollback transaction, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// ListDataSources retrieves all connection records of a project scope.
func (c *HostAPIManager) ListDataSources(ctx context.Context, scope string) ([]models.ConnectionRecord, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("scope", scope).
		Get("/projects/{scope}/datasources")
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources of %s: %w", scope, err)
	}

	if resp.StatusCode() == 404 {
		c.logger.Info("Project not known to host, no data sources", zap.String("scope", scope))
		return nil, nil
	} else if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to list data sources, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}

	var records []models.ConnectionRecord
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("failed to parse data source list: %w", err)
	}

	return records, nil
}

// CreateDataSource adds a connection record to the project scope.
func (c *HostAPIManager) CreateDataSource(ctx context.Context, scope string, record models.ConnectionRecord, transactionID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("scope", scope).
		SetQueryParam("transaction_id", transactionID).
		SetBody(record).
		Post("/projects/{scope}/datasources")
	if err != nil {
		return fmt.Errorf("failed to create data source %s: %w", record.Name, err)
	}

	if resp.StatusCode() != 202 && resp.StatusCode() != 201 {
		return fmt.Errorf(
			"unexpected status code %d when creating data source %s: response: %s",
			resp.StatusCode(), record.Name, resp.String(),
		)
	}

	c.logger.Debug("Data source created",
		zap.String("scope", scope),
		zap.String("name", record.Name),
		zap.Int("status", resp.StatusCode()))
	return nil
}

// DeleteDataSource deletes a connection record. A record that is already gone is not an error.
func (c *HostAPIManager) DeleteDataSource(ctx context.Context, scope, name, transactionID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"scope": scope, "name": name}).
		SetQueryParam("transaction_id", transactionID).
		Delete("/projects/{scope}/datasources/{name}")
	if err != nil {
		return fmt.Errorf("failed to delete data source %s: %w", name, err)
	}

	switch resp.StatusCode() {
	case 204, 202:
		c.logger.Debug("Data source deleted", zap.String("scope", scope), zap.String("name", name))
		return nil
	case 404:
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		message := resp.String()
		if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		c.logger.Info("Data source not found", zap.String("name", name), zap.String("message", message))
		return nil
	case 400:
		return fmt.Errorf("API error deleting data source %s: %s", name, resp.String())
	default:
		return fmt.Errorf("unexpected status %d deleting data source %s: %s", resp.StatusCode(), name, resp.String())
	}
}

// StoreCredentials writes the password of a connection record to the host secret storage.
func (c *HostAPIManager) StoreCredentials(ctx context.Context, scope, name, password, transactionID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"scope": scope, "name": name}).
		SetQueryParam("transaction_id", transactionID).
		SetBody(map[string]string{"password": password}).
		Put("/projects/{scope}/credentials/{name}")
	if err != nil {
		return fmt.Errorf("failed to store credentials for %s: %w", name, err)
	}

	if resp.StatusCode() != 204 && resp.StatusCode() != 200 {
		return fmt.Errorf("failed to store credentials for %s, status code: %d", name, resp.StatusCode())
	}
	return nil
}

// SendNotification shows a notification in the host UI.
func (c *HostAPIManager) SendNotification(ctx context.Context, title, message string, severity models.Severity) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"title":    title,
			"message":  message,
			"severity": string(severity),
		}).
		Post("/notifications")
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if resp.StatusCode() != 202 && resp.StatusCode() != 200 {
		return fmt.Errorf("failed to send notification, status code: %d, response: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// DownloadDriver asks the host to fetch the driver files of a driver id.
func (c *HostAPIManager) DownloadDriver(ctx context.Context, driverID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", driverID).
		Post("/drivers/{id}/download")
	if err != nil {
		return fmt.Errorf("failed to download driver %s: %w", driverID, err)
	}

	switch resp.StatusCode() {
	case 200, 202:
		return nil
	case 404:
		return fmt.Errorf("driver %s is not supported by the host", driverID)
	default:
		return fmt.Errorf("unexpected status %d downloading driver %s: %s", resp.StatusCode(), driverID, resp.String())
	}
}
