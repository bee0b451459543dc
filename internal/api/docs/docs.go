// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/will-cli/main.go -o internal/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/will/join": {
            "post": {
                "description": "Waits for the contract state at the address, bounded by JOIN_TIMEOUT",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Join a deployed will contract",
                "parameters": [
                    {"description": "Contract address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.JoinRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JoinResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/deploy": {
            "post": {
                "description": "Runs the init circuit; initialOwner defaults to the wallet's coin public key",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Deploy a new will contract",
                "parameters": [
                    {"description": "Initial owner", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.DeployRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JoinResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/beneficiaries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "List beneficiaries",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Add a beneficiary",
                "parameters": [
                    {"description": "Beneficiary", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AddBeneficiaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FinalizedTxData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/execute": {
            "post": {
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Execute the will",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FinalizedTxData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/claim": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Claim a beneficiary allocation",
                "parameters": [
                    {"description": "Beneficiary", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ClaimRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FinalizedTxData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/state": {
            "get": {
                "description": "Owner, executed flag and local allocations of the joined contract",
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Current will state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StateResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/will/private-state": {
            "delete": {
                "description": "Forgets the locally stored beneficiary records; the executed flag then follows the ledger",
                "produces": ["application/json"],
                "tags": ["will"],
                "summary": "Reset the local private state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StateResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/balance": {
            "get": {
                "description": "Available and pending DUST of the running wallet with its addresses",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "DUST balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BalanceResponse"}}
                }
            }
        },
        "/wallet/address/qr": {
            "get": {
                "produces": ["image/png"],
                "tags": ["wallet"],
                "summary": "QR code of the coin public key",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "model.AddBeneficiaryRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "integer"},
                "person": {"type": "string"}
            }
        },
        "model.BalanceResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "coinPublicKey": {"type": "string"},
                "dust": {"$ref": "#/definitions/model.DustBalance"},
                "dustDisplay": {"type": "string"},
                "synced": {"type": "boolean"}
            }
        },
        "model.ClaimRequest": {
            "type": "object",
            "properties": {
                "person": {"type": "string"}
            }
        },
        "model.DeployRequest": {
            "type": "object",
            "properties": {
                "initialOwner": {"type": "string"}
            }
        },
        "model.DustBalance": {
            "type": "object",
            "properties": {
                "available": {"type": "integer"},
                "availableCoins": {"type": "integer"},
                "pending": {"type": "integer"},
                "pendingCoins": {"type": "integer"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "model.FinalizedTxData": {
            "type": "object",
            "properties": {
                "circuit": {"type": "string"},
                "contractAddress": {"type": "string"},
                "status": {"type": "string"},
                "submittedAt": {"type": "string"},
                "txHash": {"type": "string"},
                "txId": {"type": "string"}
            }
        },
        "model.JoinRequest": {
            "type": "object",
            "properties": {
                "contractAddress": {"type": "string"}
            }
        },
        "model.JoinResponse": {
            "type": "object",
            "properties": {
                "contractAddress": {"type": "string"},
                "state": {"$ref": "#/definitions/model.StateResponse"}
            }
        },
        "model.StateResponse": {
            "type": "object",
            "properties": {
                "allocations": {"type": "object", "additionalProperties": {"type": "integer"}},
                "contractAddress": {"type": "string"},
                "isExecuted": {"type": "boolean"},
                "owner": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Will Wallet API",
	Description:      "Deploy, join and operate a will contract through a local wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
