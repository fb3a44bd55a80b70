// Package docs holds the generated OpenAPI description served under /swagger/.
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
        "/api/liquid/v1/rights-to-vote": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Ensure right to vote",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.EnsureRightToVoteResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/delegation": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Get own delegation",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.DelegationDTO"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Delegate to proxy",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httptransport.DelegateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.DelegationDTO"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Remove delegation",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/delegation-requests": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "List delegation requests",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ListDelegationRequestsResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/delegation-requests/accept": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Accept delegation requests",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httptransport.AcceptDelegationRequestsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.AcceptDelegationRequestsResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/public-proxy": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Become public proxy",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.BecomePublicProxyResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Create poll",
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httptransport.CreatePollRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.PollResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/start": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Start voting phase",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.PollResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/finish": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Finish voting phase",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.FinishVotingResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/result": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Get poll result",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.PollResultResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/voter-token": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Issue voter token",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.IssueVoterTokenResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/ballots": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Cast vote",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httptransport.CastVoteRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.CastVoteResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/ballot": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Get own ballot",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Voter token",
                        "name": "X-Voter-Token",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.BallotLookupResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/ballots/{checksum}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Get ballot by checksum",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Ballot checksum",
                        "name": "checksum",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.BallotLookupResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/liquid/v1/polls/{poll_id}/effective-proxy": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "liquid"
                ],
                "summary": "Find effective proxy",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Acting user",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Poll ID",
                        "name": "poll_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Voter token",
                        "name": "X-Voter-Token",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/httptransport.EffectiveProxyResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "httptransport.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "httptransport.EnsureRightToVoteResponse": {
            "type": "object",
            "properties": {
                "user_id": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created": {
                    "type": "boolean"
                },
                "public_proxy": {
                    "type": "boolean"
                }
            }
        },
        "httptransport.DelegateRequest": {
            "type": "object",
            "properties": {
                "proxy_id": {
                    "type": "string"
                }
            }
        },
        "httptransport.DelegationDTO": {
            "type": "object",
            "properties": {
                "delegation_id": {
                    "type": "string"
                },
                "from_user_id": {
                    "type": "string"
                },
                "to_proxy_id": {
                    "type": "string"
                },
                "pending": {
                    "type": "boolean"
                },
                "requested_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "httptransport.AcceptDelegationRequestsRequest": {
            "type": "object",
            "properties": {
                "delegation_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "httptransport.AcceptDelegationRequestsResponse": {
            "type": "object",
            "properties": {
                "accepted_count": {
                    "type": "integer"
                },
                "accepted": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/httptransport.DelegationDTO"
                    }
                }
            }
        },
        "httptransport.BecomePublicProxyResponse": {
            "type": "object",
            "properties": {
                "user_id": {
                    "type": "string"
                },
                "accepted_count": {
                    "type": "integer"
                },
                "still_pending": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/httptransport.DelegationDTO"
                    }
                }
            }
        },
        "httptransport.ListDelegationRequestsResponse": {
            "type": "object",
            "properties": {
                "proxy_id": {
                    "type": "string"
                },
                "requests": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/httptransport.DelegationDTO"
                    }
                }
            }
        },
        "httptransport.IssueVoterTokenResponse": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "voter_token": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "httptransport.CastVoteRequest": {
            "type": "object",
            "properties": {
                "voter_token": {
                    "type": "string"
                },
                "vote_order": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "httptransport.BallotDTO": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "vote_order": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "level": {
                    "type": "integer"
                },
                "checksum": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "httptransport.CastVoteResponse": {
            "type": "object",
            "properties": {
                "ballot": {
                    "$ref": "#/definitions/httptransport.BallotDTO"
                },
                "vote_count": {
                    "type": "integer"
                }
            }
        },
        "httptransport.BallotLookupResponse": {
            "type": "object",
            "properties": {
                "found": {
                    "type": "boolean"
                },
                "ballot": {
                    "$ref": "#/definitions/httptransport.BallotDTO"
                }
            }
        },
        "httptransport.EffectiveProxyResponse": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "voted": {
                    "type": "boolean"
                },
                "effective_user_id": {
                    "type": "string"
                },
                "level": {
                    "type": "integer"
                }
            }
        },
        "httptransport.CreatePollRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "proposals": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "httptransport.ProposalDTO": {
            "type": "object",
            "properties": {
                "proposal_id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "httptransport.PollResponse": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "proposals": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/httptransport.ProposalDTO"
                    }
                },
                "winner_proposal_id": {
                    "type": "string"
                },
                "voting_started_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "voting_ended_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "httptransport.FinishVotingResponse": {
            "type": "object",
            "properties": {
                "poll": {
                    "$ref": "#/definitions/httptransport.PollResponse"
                },
                "winners": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "unique": {
                    "type": "boolean"
                },
                "ballot_count": {
                    "type": "integer"
                }
            }
        },
        "httptransport.DuelDTO": {
            "type": "object",
            "properties": {
                "winner_id": {
                    "type": "string"
                },
                "loser_id": {
                    "type": "string"
                },
                "margin": {
                    "type": "integer"
                }
            }
        },
        "httptransport.PollResultResponse": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "candidate_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "duel_matrix": {
                    "type": "array",
                    "items": {
                        "type": "array",
                        "items": {
                            "type": "integer"
                        }
                    }
                },
                "locked": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/httptransport.DuelDTO"
                    }
                },
                "winners": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "winner_proposal_id": {
                    "type": "string"
                },
                "unique": {
                    "type": "boolean"
                },
                "ballot_count": {
                    "type": "integer"
                }
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
	Title:            "Liquido API",
	Description:      "Liquid democracy delegation, anonymous voting and ranked pairs tallying.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
