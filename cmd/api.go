package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a raw authenticated GET request against the Web API.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	pretty := cmd.Bool("pretty")

	if path == "" {
		return fmt.Errorf("%w: endpoint path argument is required", shared.ErrMissingArgument)
	}

	api, err := r.openAPI()
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIPost makes a raw authenticated POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: endpoint path argument is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	api, err := r.openAPI()
	if err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIPut makes a raw authenticated PUT request. The JSON body is optional,
// some Web API endpoints take PUT with no payload.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: endpoint path argument is required", shared.ErrMissingArgument)
	}

	if data != "" {
		var jsonTest any
		if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
	}

	api, err := r.openAPI()
	if err != nil {
		return err
	}

	r.logger.Info("PUT request", "path", path)

	resp, err := api.Put(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.writePlainln("✓ %d", resp.StatusCode)
	return nil
}

// APIDelete makes a raw authenticated DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")

	if path == "" {
		return fmt.Errorf("%w: endpoint path argument is required", shared.ErrMissingArgument)
	}

	api, err := r.openAPI()
	if err != nil {
		return err
	}

	r.logger.Info("DELETE request", "path", path)

	resp, err := api.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.writePlainln("✓ %d", resp.StatusCode)
	return nil
}
