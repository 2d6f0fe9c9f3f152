// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/armlint/bicep"
)

func testProcessor() *Processor {
	return NewProcessor(&ProcessorOptions{Logger: discardLogger()})
}

func resourceAt(t *testing.T, doc map[string]any, i int) map[string]any {
	t.Helper()
	arr, ok := doc["resources"].([]any)
	require.True(t, ok, "resources is not an array")
	require.Greater(t, len(arr), i)
	obj, ok := arr[i].(map[string]any)
	require.True(t, ok, "resource %d is not an object", i)
	return obj
}

func propertiesOf(t *testing.T, res map[string]any) map[string]any {
	t.Helper()
	props, ok := res["properties"].(map[string]any)
	require.True(t, ok, "properties is not an object")
	return props
}

func TestProcessBasicTemplate(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"parameters": {
		"siteName": {
			"type": "string",
			"defaultValue": "mysite"
		}
	},
	"variables": {
		"planName": "[concat(parameters('siteName'), '-plan')]"
	},
	"resources": [
		{
			"type": "Microsoft.Web/serverfarms",
			"apiVersion": "2019-08-01",
			"name": "[variables('planName')]",
			"location": "[resourceGroup().location]"
		},
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "[parameters('siteName')]",
			"properties": {
				"httpsOnly": false
			}
		}
	],
	"outputs": {
		"site": {
			"type": "string",
			"value": "[parameters('siteName')]"
		},
		"deployedBy": {
			"type": "string",
			"value": "[deployment().name]"
		}
	}
}`
	pt, err := testProcessor().Process(Input{Identifier: "azuredeploy.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	assert.Equal(t, "azuredeploy.json", pt.Identifier())
	doc := pt.Document()

	plan := resourceAt(t, doc, 0)
	assert.Equal(t, "mysite-plan", plan["name"])
	assert.Equal(t, "westus2", plan["location"])

	site := resourceAt(t, doc, 1)
	assert.Equal(t, "mysite", site["name"])
	assert.Equal(t, false, propertiesOf(t, site)["httpsOnly"])

	outs, ok := doc["outputs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mysite", outs["site"].(map[string]any)["value"])
	assert.Equal(t, "azuredeploy", outs["deployedBy"].(map[string]any)["value"])

	resources := pt.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "Microsoft.Web/serverfarms", resources[0].Type)
	assert.Equal(t, "resources[0]", resources[0].Path)
	assert.Equal(t, "Microsoft.Web/sites", resources[1].Type)
	assert.Equal(t, "resources[1]", resources[1].Path)

	// untouched templates map every resource to itself
	assert.Equal(t, map[string]string{
		"resources[0]": "resources[0]",
		"resources[1]": "resources[1]",
	}, pt.Mappings().Snapshot())

	assert.Equal(t, 25, pt.LineNumber("resources[1].properties.httpsOnly"))
	assert.Equal(t, 23, pt.LineNumber("resources[1].name"))
	assert.Equal(t, 20, pt.LineNumber("resources[1]"))
	// paths absent from the source fall back to the closest ancestor
	assert.Equal(t, 24, pt.LineNumber("resources[1].properties.ghost"))

	// the original tree keeps the unevaluated expressions
	origRes := pt.Original()["resources"].([]any)
	assert.Equal(t, "[parameters('siteName')]", origRes[1].(map[string]any)["name"])
}

func TestProcessCopyLoop(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Storage/storageAccounts",
			"apiVersion": "2021-04-01",
			"name": "[concat('stg', copyIndex())]",
			"copy": {
				"name": "storageLoop",
				"count": 3
			},
			"properties": {
				"supportsHttpsTrafficOnly": false
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "copies.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	doc := pt.Document()
	for i, want := range []string{"stg0", "stg1", "stg2"} {
		res := resourceAt(t, doc, i)
		assert.Equal(t, want, res["name"])
		_, hasCopy := res["copy"]
		assert.False(t, hasCopy, "copy descriptor should be removed from instance %d", i)
	}

	assert.Equal(t, map[string]string{
		"resources[0]": "resources[0]",
		"resources[1]": "resources[0]",
		"resources[2]": "resources[0]",
	}, pt.Mappings().Snapshot())

	resources := pt.Resources()
	require.Len(t, resources, 3)
	assert.Equal(t, "resources[2]", resources[2].Path)

	// every copy reports the prototype's source lines
	assert.Equal(t, 14, pt.LineNumber("resources[2].properties.supportsHttpsTrafficOnly"))
	assert.Equal(t, 8, pt.LineNumber("resources[1].name"))

	// copies keep the authored name of their prototype
	for _, fr := range pt.flat.order {
		assert.Equal(t, "[concat('stg', copyIndex())]", fr.originalName)
	}
}

func TestProcessCopyCountFromParameter(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"parameters": {
		"instanceCount": {
			"type": "int",
			"defaultValue": 2
		}
	},
	"resources": [
		{
			"type": "Microsoft.Compute/virtualMachines",
			"apiVersion": "2021-03-01",
			"name": "[concat('vm', copyIndex('vmLoop', 1))]",
			"copy": {
				"name": "vmLoop",
				"count": "[parameters('instanceCount')]"
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "vms.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	doc := pt.Document()
	assert.Equal(t, "vm1", resourceAt(t, doc, 0)["name"])
	assert.Equal(t, "vm2", resourceAt(t, doc, 1)["name"])
	assert.Len(t, pt.Resources(), 2)
}

func TestProcessCopyCountZero(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Storage/storageAccounts",
			"apiVersion": "2021-04-01",
			"name": "never",
			"copy": {
				"name": "loop",
				"count": 0
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "zero.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)
	assert.Empty(t, pt.Resources())
	assert.Equal(t, 0, pt.Mappings().Len())
}

func TestProcessCopyLoopWithNestedChildren(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Sql/servers",
			"apiVersion": "2021-02-01",
			"name": "[concat('srv', copyIndex())]",
			"copy": {
				"name": "serverLoop",
				"count": 2
			},
			"resources": [
				{
					"type": "databases",
					"apiVersion": "2021-02-01",
					"name": "db",
					"properties": {
						"zoneRedundant": false
					}
				}
			]
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "nested.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	resources := pt.Resources()
	require.Len(t, resources, 4)
	assert.Equal(t, "resources[0]", resources[0].Path)
	assert.Equal(t, "resources[0].resources[0]", resources[1].Path)
	assert.Equal(t, "resources[1]", resources[2].Path)
	assert.Equal(t, "resources[1].resources[0]", resources[3].Path)
	assert.Equal(t, "Microsoft.Sql/servers/databases", resources[1].Type)
	assert.Equal(t, "Microsoft.Sql/servers/databases", resources[3].Type)

	assert.Equal(t, map[string]string{
		"resources[0]":              "resources[0]",
		"resources[1]":              "resources[0]",
		"resources[0].resources[0]": "resources[0].resources[0]",
		"resources[1].resources[0]": "resources[0].resources[0]",
	}, pt.Mappings().Snapshot())

	// both server copies got their own child instance
	assert.Equal(t, "srv0", resourceAt(t, pt.Document(), 0)["name"])
	assert.Equal(t, "srv1", resourceAt(t, pt.Document(), 1)["name"])
	assert.Equal(t, 19, pt.LineNumber("resources[1].resources[0].properties.zoneRedundant"))
}

func TestProcessNestedChildResources(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Sql/servers",
			"apiVersion": "2021-02-01",
			"name": "sqlserver1",
			"properties": {
				"minimalTlsVersion": "1.2"
			},
			"resources": [
				{
					"type": "databases",
					"apiVersion": "2021-02-01",
					"name": "db1",
					"properties": {
						"zoneRedundant": false
					}
				},
				{
					"type": "Microsoft.Sql/servers/firewallRules",
					"apiVersion": "2021-02-01",
					"name": "sqlserver1/allowAll",
					"properties": {
						"startIpAddress": "0.0.0.0"
					}
				}
			]
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "sql.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	resources := pt.Resources()
	require.Len(t, resources, 3)
	assert.Equal(t, "Microsoft.Sql/servers", resources[0].Type)
	assert.Equal(t, "Microsoft.Sql/servers/databases", resources[1].Type)
	assert.Equal(t, "Microsoft.Sql/servers/firewallRules", resources[2].Type)

	// identity keys cascade name and type from the root
	assert.Contains(t, pt.flat.byKey, "sqlserver1 microsoft.sql/servers")
	assert.Contains(t, pt.flat.byKey, "sqlserver1/db1 microsoft.sql/servers/databases")
	assert.Contains(t, pt.flat.byKey, "sqlserver1/allowall microsoft.sql/servers/firewallrules")

	assert.Equal(t, 18, pt.LineNumber("resources[0].resources[0].properties.zoneRedundant"))
}

func TestProcessUnresolvableExpressionsBecomeSentinels(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"properties": {
				"a": "[listKeys(resourceId('Microsoft.Storage/storageAccounts', 'stg'), '2021-04-01')]",
				"b": "[totallyUnknownFunction()]",
				"c": "[reference('ghost').id]",
				"d": "plain string",
				"e": "[[escaped literal]"
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "lenient.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	props := propertiesOf(t, resourceAt(t, pt.Document(), 0))
	assert.Equal(t, NotParsed, props["a"])
	assert.Equal(t, NotParsed, props["b"])
	assert.Equal(t, NotParsed, props["c"])
	assert.Equal(t, "plain string", props["d"])
	assert.Equal(t, "[escaped literal]", props["e"])
}

func TestProcessStrictExpressions(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"properties": {
				"bad": "[bogus()]"
			}
		}
	]
}`
	p := NewProcessor(&ProcessorOptions{StrictExpressions: true, Logger: discardLogger()})
	_, err := p.Process(Input{Identifier: "strict.json", TemplateJSON: []byte(src)})
	require.Error(t, err)
	target := &ErrExpression{}
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "[bogus()]", target.Expression)
}

func TestProcessDependsOnBareName(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/serverfarms",
			"apiVersion": "2019-08-01",
			"name": "plan1"
		},
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"dependsOn": ["plan1"],
			"properties": {
				"httpsOnly": true
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "deps.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	plan := resourceAt(t, pt.Document(), 0)
	children, ok := plan["resources"].([]any)
	require.True(t, ok, "dependent resource was not attached")
	require.Len(t, children, 1)
	attached, ok := children[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "site1", attached["name"])

	// attached children resolve to the dependent's original location
	assert.Equal(t, "resources[1].properties.httpsOnly", pt.OriginalPath("resources[0].resources[0].properties.httpsOnly"))
	assert.Equal(t, 16, pt.LineNumber("resources[0].resources[0].properties.httpsOnly"))

	// the flattened set reflects the template before attachment
	assert.Len(t, pt.Resources(), 2)
}

func TestProcessDependsOnResourceID(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/serverfarms",
			"apiVersion": "2019-08-01",
			"name": "plan1"
		},
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"dependsOn": ["[resourceId('Microsoft.Web/serverfarms', 'plan1')]"]
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "deps-id.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	plan := resourceAt(t, pt.Document(), 0)
	children, ok := plan["resources"].([]any)
	require.True(t, ok, "dependent resource was not attached")
	require.Len(t, children, 1)
	assert.Equal(t, "site1", children[0].(map[string]any)["name"])
}

func TestProcessDependsOnUnresolvedTargets(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Network/networkInterfaces",
			"apiVersion": "2021-02-01",
			"name": "shared"
		},
		{
			"type": "Microsoft.Network/publicIPAddresses",
			"apiVersion": "2021-02-01",
			"name": "shared"
		},
		{
			"type": "Microsoft.Compute/virtualMachines",
			"apiVersion": "2021-03-01",
			"name": "app",
			"dependsOn": ["shared", "ghost", "app"]
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "skip.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	// ambiguous, missing and self dependencies all skip attachment
	doc := pt.Document()
	for i := 0; i < 3; i++ {
		_, has := resourceAt(t, doc, i)["resources"]
		assert.False(t, has, "resource %d should have no attached children", i)
	}
}

func TestProcessPropertyCopy(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Network/virtualNetworks",
			"apiVersion": "2021-02-01",
			"name": "vnet1",
			"properties": {
				"addressSpace": {
					"addressPrefixes": ["10.0.0.0/16"]
				},
				"copy": [
					{
						"name": "subnets",
						"count": 2,
						"input": {
							"name": "[concat('subnet', copyIndex('subnets'))]",
							"properties": {
								"addressPrefix": "10.0.0.0/24"
							}
						}
					}
				]
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "vnet.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	props := propertiesOf(t, resourceAt(t, pt.Document(), 0))
	_, hasCopy := props["copy"]
	assert.False(t, hasCopy)
	assert.Contains(t, props, "addressSpace")

	subnets, ok := props["subnets"].([]any)
	require.True(t, ok, "property copy was not materialized")
	require.Len(t, subnets, 2)
	assert.Equal(t, "subnet0", subnets[0].(map[string]any)["name"])
	assert.Equal(t, "subnet1", subnets[1].(map[string]any)["name"])
}

func TestProcessVariablesCopy(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"variables": {
		"copy": [
			{
				"name": "disks",
				"count": 2,
				"input": {
					"lun": "[copyIndex('disks')]"
				}
			}
		]
	},
	"resources": [
		{
			"type": "Microsoft.Compute/virtualMachines",
			"apiVersion": "2021-03-01",
			"name": "vm1",
			"properties": {
				"dataDisks": "[variables('disks')]"
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "disks.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)

	props := propertiesOf(t, resourceAt(t, pt.Document(), 0))
	disks, ok := props["dataDisks"].([]any)
	require.True(t, ok)
	require.Len(t, disks, 2)
	assert.Equal(t, float64(0), disks[0].(map[string]any)["lun"])
	assert.Equal(t, float64(1), disks[1].(map[string]any)["lun"])
}

func TestProcessUserFunctions(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"functions": [
		{
			"namespace": "contoso",
			"members": {
				"uniqueName": {
					"parameters": [
						{
							"name": "prefix",
							"type": "string"
						}
					],
					"output": {
						"type": "string",
						"value": "[concat(parameters('prefix'), '-suffix')]"
					}
				}
			}
		}
	],
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "[contoso.uniqueName('app')]"
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "funcs.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)
	assert.Equal(t, "app-suffix", resourceAt(t, pt.Document(), 0)["name"])
}

func TestProcessReference(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/serverfarms",
			"apiVersion": "2019-08-01",
			"name": "plan1",
			"properties": {
				"reserved": true
			}
		},
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"properties": {
				"linuxEnabled": "[reference('plan1').reserved]"
			}
		}
	]
}`
	pt, err := testProcessor().Process(Input{Identifier: "ref.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)
	assert.Equal(t, true, propertiesOf(t, resourceAt(t, pt.Document(), 1))["linuxEnabled"])
}

func TestProcessParametersFile(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"parameters": {
		"siteName": {
			"type": "string"
		},
		"secret": {
			"type": "secureString"
		}
	},
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "[parameters('siteName')]",
			"properties": {
				"adminPassword": "[parameters('secret')]"
			}
		}
	]
}`
	params := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#",
	"contentVersion": "1.0.0.0",
	"parameters": {
		"siteName": { "value": "fromfile" },
		"secret": { "reference": { "keyVault": { "id": "kv" }, "secretName": "pw" } }
	}
}`
	pt, err := testProcessor().Process(Input{
		Identifier:     "withparams.json",
		TemplateJSON:   []byte(src),
		ParametersJSON: []byte(params),
	})
	require.NoError(t, err)

	site := resourceAt(t, pt.Document(), 0)
	assert.Equal(t, "fromfile", site["name"])
	assert.Equal(t, "REF_NOT_AVAIL_secret", propertiesOf(t, site)["adminPassword"])
}

func TestProcessParametersFileErrors(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": []
}`
	_, err := testProcessor().Process(Input{
		Identifier:     "badparams.json",
		TemplateJSON:   []byte(src),
		ParametersJSON: []byte(`{"contentVersion": "1.0.0.0"}`),
	})
	require.Error(t, err)
	target := &ErrParameterParse{}
	assert.ErrorAs(t, err, &target)
}

func TestProcessDuplicateResources(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "dup"
		},
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "dup"
		}
	]
}`
	_, err := testProcessor().Process(Input{Identifier: "dup.json", TemplateJSON: []byte(src)})
	require.Error(t, err)
	target := &ErrDuplicateResource{}
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "dup Microsoft.Web/sites", target.Key)
}

func TestProcessValidation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		src  string
	}{
		{"invalid json", `{`},
		{"missing schema", `{"resources": []}`},
		{"non deployment schema", `{"$schema": "https://example.com/other.json#", "resources": []}`},
		{"missing resources", `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#"}`},
		{"resources not an array", `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#", "resources": {}}`},
		{"resource not an object", `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#", "resources": ["oops"]}`},
		{"resource missing name", `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#", "resources": [{"type": "Microsoft.Web/sites", "apiVersion": "2019-08-01"}]}`},
		{"resource missing type", `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#", "resources": [{"name": "x", "apiVersion": "2019-08-01"}]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := testProcessor().Process(Input{Identifier: "invalid.json", TemplateJSON: []byte(tc.src)})
			require.Error(t, err)
			target := &ErrTemplateParse{}
			assert.ErrorAs(t, err, &target)
		})
	}
}

func TestProcessAcceptsScopedSchemas(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2018-05-01/subscriptionDeploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": []
}`
	pt, err := testProcessor().Process(Input{Identifier: "sub.json", TemplateJSON: []byte(src)})
	require.NoError(t, err)
	assert.Empty(t, pt.Resources())
}

func TestProcessBicepSourceMap(t *testing.T) {
	t.Parallel()
	src := `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"contentVersion": "1.0.0.0",
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2019-08-01",
			"name": "site1",
			"properties": {
				"httpsOnly": false
			}
		}
	]
}`
	sm := &bicep.SourceMap{
		Entries: []bicep.SourceMapEntry{
			{
				FilePath: "infra/main.bicep",
				SourceMap: []bicep.LineMapping{
					{SourceLine: 4, TargetLine: 10},
				},
			},
		},
	}
	pt, err := testProcessor().Process(Input{Identifier: "main.json", TemplateJSON: []byte(src), SourceMap: sm})
	require.NoError(t, err)

	// JSON line 10 is mapped back into the Bicep source
	assert.Equal(t, 4, pt.LineNumber("resources[0].properties.httpsOnly"))
	file, line := pt.SourceLocation("resources[0].properties.httpsOnly")
	assert.Equal(t, "infra/main.bicep", file)
	assert.Equal(t, 4, line)

	// JSON lines missing from the source map are unknown
	assert.Equal(t, 0, pt.LineNumber("resources[0].name"))
}
