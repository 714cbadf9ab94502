package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3montree-dev/threatguard/threatmodel"
)

const terraformFixture = `
resource "aws_lb" "edge" {
}

resource "aws_lb_listener" "edge_https" {
  protocol = "HTTPS"
  port     = 443
}

resource "aws_instance" "app_server" {
  instance_type = "t3.medium"
}

resource "aws_db_instance" "orders" {
  engine            = "postgres"
  storage_encrypted = true
}

resource "aws_s3_bucket" "exports" {
}

resource "aws_iam_role" "app_role" {
}
`

func TestParseTerraform(t *testing.T) {
	model, err := ParseTerraform([]byte(terraformFixture), "prod.tf")
	require.NoError(t, err)

	assert.Equal(t, "prod", model.Name)

	byID := map[string]threatmodel.Component{}
	for _, c := range model.Components {
		byID[c.ID] = c
	}

	t.Run("maps known resource types and skips plumbing", func(t *testing.T) {
		require.Len(t, model.Components, 4)
		assert.NotContains(t, byID, "aws_iam_role.app_role")
		assert.NotContains(t, byID, "aws_lb_listener.edge_https")
	})

	t.Run("applies the resource profile", func(t *testing.T) {
		db := byID["aws_db_instance.orders"]
		assert.Equal(t, "Orders", db.Name)
		assert.Equal(t, "database", db.Type)
		assert.Equal(t, "RDS", db.Technology)
		assert.Equal(t, threatmodel.CriticalityCritical, db.Criticality)
		assert.Equal(t, "confidential", db.DataClassification)

		app := byID["aws_instance.app_server"]
		assert.Equal(t, "App Server", app.Name)
		assert.Equal(t, "process", app.Type)
	})

	t.Run("infers the request path", func(t *testing.T) {
		require.Len(t, model.Flows, 3)

		flowsBySource := map[string][]threatmodel.DataFlow{}
		for _, f := range model.Flows {
			flowsBySource[f.SourceID] = append(flowsBySource[f.SourceID], f)
		}

		lbFlows := flowsBySource["aws_lb.edge"]
		require.Len(t, lbFlows, 1)
		assert.Equal(t, "aws_instance.app_server", lbFlows[0].TargetID)
		assert.True(t, lbFlows[0].Encrypted, "HTTPS listener marks the edge flow encrypted")

		appFlows := flowsBySource["aws_instance.app_server"]
		require.Len(t, appFlows, 2)
		for _, f := range appFlows {
			assert.True(t, f.Authenticated, "cloud internal flows use IAM")
		}
	})

	t.Run("encryption follows the resource attributes", func(t *testing.T) {
		encryptedByTarget := map[string]bool{}
		for _, f := range model.Flows {
			encryptedByTarget[f.TargetID] = f.Encrypted
		}
		assert.True(t, encryptedByTarget["aws_db_instance.orders"])
		assert.False(t, encryptedByTarget["aws_s3_bucket.exports"])
	})
}

func TestParseTerraformNoHTTPSListener(t *testing.T) {
	src := `
resource "aws_lb" "edge" {
}

resource "aws_lb_listener" "edge_http" {
  protocol = "HTTP"
}

resource "aws_instance" "app" {
}
`
	model, err := ParseTerraform([]byte(src), "plain.tf")
	require.NoError(t, err)
	require.Len(t, model.Flows, 1)
	assert.False(t, model.Flows[0].Encrypted)
}

func TestParseTerraformNestedEncryptionBlock(t *testing.T) {
	src := `
resource "aws_instance" "worker" {
}

resource "aws_s3_bucket" "reports" {
  server_side_encryption_configuration {
    rule {
      apply_server_side_encryption_by_default {
        sse_algorithm = "aws:kms"
      }
    }
  }
}
`
	model, err := ParseTerraform([]byte(src), "reports.tf")
	require.NoError(t, err)
	require.Len(t, model.Flows, 1)
	assert.True(t, model.Flows[0].Encrypted)
}

func TestParseTerraformInvalidSource(t *testing.T) {
	_, err := ParseTerraform([]byte(`resource "aws_instance" {`), "broken.tf")
	assert.Error(t, err)
}
