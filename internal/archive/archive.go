// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive periodically uploads the checkpoint row to an
// S3-compatible bucket, reduced from the teacher's multi-provider
// storage abstraction (internal/pkg/storage) to the single provider this
// component needs: this is disaster-recovery metadata only ("where did
// the last sequencer leave off"), never the journal's payload bytes, so
// it does not reintroduce the distributed-replication Non-goal.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/x123la/lacrimosa/internal/checkpoint"
	"github.com/x123la/lacrimosa/internal/telemetry/log"
)

// Config configures the checkpoint archiver.
type Config struct {
	Bucket string
	Prefix string
	// NodeID distinguishes this sequencer's checkpoint object from
	// others sharing the bucket, when more than one node archives to it.
	NodeID string
}

// Archiver uploads checkpoint snapshots to S3 on a timer.
type Archiver struct {
	cfg    Config
	client *s3.Client
	store  *checkpoint.Store
}

// New constructs an Archiver using the default AWS credential chain
// (environment, shared config, EC2/ECS instance role).
func New(ctx context.Context, cfg Config, store *checkpoint.Store) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	return &Archiver{
		cfg:    cfg,
		client: s3.NewFromConfig(awsCfg),
		store:  store,
	}, nil
}

type snapshot struct {
	LamportTS uint64    `json:"lamport_ts"`
	Head      int64     `json:"head"`
	Tail      int64     `json:"tail"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Run uploads a snapshot every interval until ctx is canceled.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.uploadOnce(ctx); err != nil {
				log.Errorw("archive: upload failed", "error", err)
			}
		}
	}
}

func (a *Archiver) key() string {
	return fmt.Sprintf("%s%s.json", a.cfg.Prefix, a.cfg.NodeID)
}

func (a *Archiver) uploadOnce(ctx context.Context) error {
	state, found, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("archive: load checkpoint: %w", err)
	}
	if !found {
		return nil
	}

	body, err := json.Marshal(snapshot{
		LamportTS: state.LamportTS,
		Head:      state.Head,
		Tail:      state.Tail,
		UpdatedAt: state.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("archive: marshal checkpoint: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(a.key()),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: put object: %w", err)
	}

	log.Infow("archive: checkpoint uploaded", "bucket", a.cfg.Bucket, "key", a.key())
	return nil
}
