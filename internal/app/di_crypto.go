package app

import (
	"fmt"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
)

// MasterKeySource returns the master key source selected by configuration:
// a KMS-backed source when KMS_PROVIDER is set, the environment variable
// source otherwise. Both implementations cache the resolved key, so Get hits
// the environment or the KMS at most once per process lifetime.
func (c *Container) MasterKeySource() (cryptoService.MasterKeySource, error) {
	var err error
	c.masterKeySourceInit.Do(func() {
		c.masterKeySource, err = c.initMasterKeySource()
		if err != nil {
			c.initErrors["masterKeySource"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeySource"]; exists {
		return nil, storedErr
	}
	return c.masterKeySource, nil
}

// Envelope returns the envelope encryption service.
func (c *Container) Envelope() (cryptoService.Envelope, error) {
	var err error
	c.envelopeInit.Do(func() {
		var algorithm cryptoDomain.Algorithm
		algorithm, err = c.encryptionAlgorithm()
		if err != nil {
			c.initErrors["envelope"] = err
			return
		}
		c.envelope = cryptoService.NewEnvelope(cryptoService.NewAEADManager(), algorithm)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// initMasterKeySource selects the master key source from configuration.
func (c *Container) initMasterKeySource() (cryptoService.MasterKeySource, error) {
	if c.config.KMSProvider != "" {
		if c.config.KMSKeyURI == "" || c.config.KMSWrappedMasterKey == "" {
			return nil, fmt.Errorf(
				"kms master key source requires KMS_KEY_URI and KMS_WRAPPED_MASTER_KEY",
			)
		}
		return cryptoService.NewKMSMasterKeySource(
			c.config.KMSKeyURI,
			c.config.KMSWrappedMasterKey,
		), nil
	}

	return cryptoService.NewEnvMasterKeySource(c.config.MasterKeyVar), nil
}

// encryptionAlgorithm maps the configured algorithm name to the domain type.
func (c *Container) encryptionAlgorithm() (cryptoDomain.Algorithm, error) {
	switch cryptoDomain.Algorithm(c.config.EncryptionAlgorithm) {
	case cryptoDomain.AESGCM:
		return cryptoDomain.AESGCM, nil
	case cryptoDomain.ChaCha20:
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf(
			"%w: %s", cryptoDomain.ErrUnsupportedAlgorithm, c.config.EncryptionAlgorithm,
		)
	}
}
