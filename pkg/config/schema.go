package config

// MirrorSchema is the JSON schema for the mirror configuration file
const MirrorSchema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "type": "object",
    "properties": {
        "site_dir": {
            "type": "string",
            "minLength": 1,
            "description": "Directory produced by the documentation build"
        },
        "max_concurrent_uploads": {
            "type": "integer",
            "minimum": 1
        },
        "prune": {
            "type": "boolean"
        },
        "destinations": {
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "object",
                "properties": {
                    "name": {
                        "type": "string",
                        "pattern": "^[a-zA-Z0-9_-]+$"
                    },
                    "type": {
                        "type": "string",
                        "enum": ["local", "s3", "backblaze", "ssh"]
                    },
                    "enabled": {
                        "type": "boolean"
                    },
                    "base_dir": {
                        "type": "string"
                    },
                    "options": {
                        "type": "object"
                    }
                },
                "required": ["name", "type"]
            }
        }
    },
    "required": ["destinations"]
}`
