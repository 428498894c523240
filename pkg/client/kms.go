package client

import (
	"context"
	"net/http"
)

var kmsRetrieveKmsKey = operation{
	name:    "Kms.RetrieveKmsKey",
	method:  http.MethodGet,
	path:    "/kms/keys/{keyId}",
	success: []int{http.StatusOK},
}

type KmsOperations struct {
	client *KuFlowClient
}

// RetrieveKmsKey fetches the key used to encrypt payloads of the tenant.
func (o *KmsOperations) RetrieveKmsKey(ctx context.Context, keyID string) (*KmsKey, error) {
	return valueOf(o.RetrieveKmsKeyWithResponse(ctx, keyID))
}

func (o *KmsOperations) RetrieveKmsKeyWithResponse(ctx context.Context, keyID string) (*Response[KmsKey], error) {
	if err := requireText(kmsRetrieveKmsKey.name, "keyId", keyID); err != nil {
		return nil, err
	}
	return invoke[KmsKey](ctx, o.client, kmsRetrieveKmsKey, request{
		pathParams: map[string]any{"keyId": keyID},
	})
}
