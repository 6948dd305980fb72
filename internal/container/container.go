// Package container provides dependency injection for the txn-classifier service.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/txn-classifier/internal/anomaly"
	"fjacquet/txn-classifier/internal/config"
	"fjacquet/txn-classifier/internal/inference"
	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/modelbundle"
	"fjacquet/txn-classifier/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    *store.ArtifactStore
	bundle   *modelbundle.Bundle
	engine   *inference.Engine
	detector *anomaly.Detector
}

// NewContainer creates and wires all application dependencies, logging
// through a logrus adapter built from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
// The model artifact is loaded eagerly; a failure is returned as
// *mlerror.ModelLoadError and must abort startup.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	artifactStore := store.NewArtifactStore(cfg.Model.Path, logger)

	bundle, err := modelbundle.LoadFrom(artifactStore)
	if err != nil {
		logger.WithError(err).Error("Failed to load model",
			logging.Field{Key: logging.FieldModelPath, Value: cfg.Model.Path})
		return nil, err
	}

	logger.Info("Model loaded successfully",
		logging.Field{Key: logging.FieldModelPath, Value: bundle.Source()},
		logging.Field{Key: logging.FieldModelVersion, Value: bundle.Version()},
		logging.Field{Key: "labels", Value: bundle.Labels()},
		logging.Field{Key: "vocabulary_size", Value: bundle.VocabularySize()})

	engine := inference.NewEngine(bundle, logger,
		inference.WithConfidenceThreshold(cfg.Inference.ConfidenceThreshold),
		inference.WithConcurrency(cfg.Inference.Workers, cfg.Inference.ParallelThreshold))

	detector := anomaly.NewDetector(logger)

	logger.Debug("Container initialized successfully",
		logging.Field{Key: logging.FieldThreshold, Value: engine.Threshold()})

	return &Container{
		logger:   logger,
		config:   cfg,
		store:    artifactStore,
		bundle:   bundle,
		engine:   engine,
		detector: detector,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the artifact store the model was read from.
func (c *Container) GetStore() *store.ArtifactStore {
	return c.store
}

// GetBundle returns the loaded model bundle.
func (c *Container) GetBundle() *modelbundle.Bundle {
	return c.bundle
}

// GetEngine returns the inference engine.
func (c *Container) GetEngine() *inference.Engine {
	return c.engine
}

// GetDetector returns the anomaly detector.
func (c *Container) GetDetector() *anomaly.Detector {
	return c.detector
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return nil
}
